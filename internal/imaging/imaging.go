package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/popis/internal/model"
)

// MaxInputDimension is the largest width or height accepted for a photo.
const MaxInputDimension = 4000

// Thumbnail dimensions.
const (
	ThumbnailWidth  = 200
	ThumbnailHeight = 200
)

// MIME is the type of every processed photo.
const MIME = "image/jpeg"

// ErrTooLarge is returned for images beyond MaxInputDimension.
var ErrTooLarge = errors.New("image too large")

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Process reads image data, validates the format by sniffing bytes,
// downscales to the quality's maximum dimension and re-encodes as JPEG
// at the quality's compression level.
func Process(r io.Reader, quality model.PhotoQuality) ([]byte, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}

	img = downscale(img, quality.MaxDimension())
	return encode(img, quality.JPEGQuality())
}

// Validate reports an error unless r holds a JPEG or PNG no larger than
// MaxInputDimension in either direction. Only the header is decoded.
func Validate(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading image data: %w", err)
	}
	_, err = validate(data)
	return err
}

// Thumbnail scales the image to exactly w by h pixels and encodes it as JPEG.
func Thumbnail(r io.Reader, w, h int) ([]byte, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return encode(dst, model.PhotoQualityMedium.JPEGQuality())
}

func validate(data []byte) (image.Config, error) {
	// Sniff actual MIME type from bytes (not trusting client headers).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return image.Config{}, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width > MaxInputDimension || cfg.Height > MaxInputDimension {
		return cfg, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrTooLarge,
			cfg.Width, cfg.Height, MaxInputDimension, MaxInputDimension)
	}
	return cfg, nil
}

func decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if _, err := validate(data); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
