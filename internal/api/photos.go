package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/imaging"
	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/photo"
	"github.com/erazemk/popis/internal/store"
)

// maxUploadSize bounds a single photo upload.
const maxUploadSize = 20 << 20

var (
	errPhotoLimit    = errors.New("item already has the maximum number of photos")
	errPhotoNotFound = errors.New("photo not found")
)

// PhotosHandler handles photo upload, download and removal.
type PhotosHandler struct {
	Catalog *catalog.Repository
	Store   *store.Store
	Photos  *photo.Store
}

// Upload handles POST /api/items/{id}/photos.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Catalog.Item(r.Context(), r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	if len(item.PhotoIDs) >= settings.MaxPhotosPerItem {
		jsonError(w, http.StatusConflict, errPhotoLimit.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read photo")
		return
	}

	if err := imaging.Validate(bytes.NewReader(data)); err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	quality := settings.PhotoQuality
	if !settings.AutoCompressPhotos {
		quality = model.PhotoQualityHigh
	}

	id, err := h.Photos.Save(bytes.NewReader(data), quality)
	if err != nil {
		slog.Error("failed to save photo", "item", item.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	updated, err := h.Catalog.ModifyItem(r.Context(), item.ID, func(it *model.Item) error {
		if len(it.PhotoIDs) >= settings.MaxPhotosPerItem {
			return errPhotoLimit
		}
		it.PhotoIDs = append(it.PhotoIDs, id)
		return nil
	})
	if err != nil {
		// A failed commit keeps the photo on the in-memory item, so the
		// file is only dropped when the item was left unchanged.
		if errors.Is(err, errPhotoLimit) || errors.Is(err, catalog.ErrItemNotFound) {
			if derr := h.Photos.Delete(id); derr != nil {
				slog.Warn("failed to delete orphaned photo", "photo", id, "error", derr)
			}
		}
		switch {
		case errors.Is(err, errPhotoLimit):
			jsonError(w, http.StatusConflict, err.Error())
		case errors.Is(err, catalog.ErrItemNotFound):
			jsonError(w, http.StatusNotFound, "item not found")
		default:
			slog.Error("failed to attach photo", "item", item.ID, "photo", id, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to attach photo")
		}
		return
	}

	slog.Info("photo added", "item", updated.ID, "photo", id, "photos", len(updated.PhotoIDs))
	jsonResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// Remove handles DELETE /api/items/{id}/photos/{photoID}.
func (h *PhotosHandler) Remove(w http.ResponseWriter, r *http.Request) {
	photoID := r.PathValue("photoID")
	_, err := h.Catalog.ModifyItem(r.Context(), r.PathValue("id"), func(it *model.Item) error {
		i := slices.Index(it.PhotoIDs, photoID)
		if i < 0 {
			return errPhotoNotFound
		}
		it.PhotoIDs = slices.Delete(it.PhotoIDs, i, i+1)
		return nil
	})
	switch {
	case errors.Is(err, catalog.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
		return
	case errors.Is(err, errPhotoNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to detach photo")
		return
	}

	if err := h.Photos.Delete(photoID); err != nil {
		slog.Warn("failed to delete photo", "photo", photoID, "error", err)
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo removed"})
}

// Get handles GET /api/photos/{id}. With ?thumb=N a square N by N
// thumbnail is returned instead of the stored photo.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.Photos.Load(r.PathValue("id"))
	if errors.Is(err, photo.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load photo")
		return
	}

	if s := r.URL.Query().Get("thumb"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size <= 0 || size > imaging.MaxInputDimension {
			jsonError(w, http.StatusBadRequest, "invalid thumbnail size")
			return
		}
		data, err = imaging.Thumbnail(bytes.NewReader(data), size, size)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to render thumbnail")
			return
		}
	}

	w.Header().Set("Content-Type", imaging.MIME)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
