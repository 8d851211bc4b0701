// Package backup copies the catalog and its photos to an S3-compatible
// bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/erazemk/popis/internal/config"
	"github.com/erazemk/popis/internal/export"
	"github.com/erazemk/popis/internal/imaging"
	"github.com/erazemk/popis/internal/model"
)

// ErrNoBucket is returned when the backup bucket is not configured.
var ErrNoBucket = errors.New("backup bucket not configured")

var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Uploader stores one object. *s3.Client implements it.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Catalog provides a consistent view of the collections.
type Catalog interface {
	Snapshot(ctx context.Context) ([]model.Item, []model.Category, []model.Location)
}

// Photos lists and reads stored photo files.
type Photos interface {
	List() ([]string, error)
	Load(id string) ([]byte, error)
}

// StateStore reads settings and records when the last backup ran.
type StateStore interface {
	LoadSettings(ctx context.Context) (model.AppSettings, error)
	LoadAppState(ctx context.Context) (model.AppState, error)
	SaveAppState(ctx context.Context, state model.AppState) error
}

// NewS3Client builds a client for the configured bucket. An empty access key
// falls back to the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg config.BackupConfig, secretKey string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, secretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Snapshot is the JSON document written next to the photos.
type Snapshot struct {
	AppVersion string            `json:"app_version"`
	CreatedAt  time.Time         `json:"created_at"`
	Settings   model.AppSettings `json:"settings"`
	Items      []model.Item      `json:"items"`
	Categories []model.Category  `json:"categories"`
	Locations  []model.Location  `json:"locations"`
}

// Result describes a finished backup.
type Result struct {
	Prefix  string
	Objects int
	Photos  int
	Skipped int
}

// Runner uploads backups.
type Runner struct {
	uploader Uploader
	bucket   string
	prefix   string
	catalog  Catalog
	photos   Photos
	state    StateStore
	now      func() time.Time
}

// NewRunner creates a Runner writing to bucket under prefix.
func NewRunner(u Uploader, bucket, prefix string, c Catalog, p Photos, s StateStore) *Runner {
	return &Runner{
		uploader: u,
		bucket:   bucket,
		prefix:   prefix,
		catalog:  c,
		photos:   p,
		state:    s,
		now:      time.Now,
	}
}

// Run uploads catalog.json, items.csv and every photo under
// <prefix>/<timestamp>/ and then records the backup date. Photos that
// disappear while the backup runs are skipped.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.bucket == "" {
		return Result{}, ErrNoBucket
	}

	started := r.now().UTC()
	res := Result{Prefix: path.Join(r.prefix, started.Format("20060102T150405Z"))}

	settings, err := r.state.LoadSettings(ctx)
	if err != nil {
		return res, fmt.Errorf("loading settings: %w", err)
	}
	items, categories, locations := r.catalog.Snapshot(ctx)

	doc, err := json.MarshalIndent(Snapshot{
		AppVersion: model.AppVersion,
		CreatedAt:  started,
		Settings:   settings,
		Items:      items,
		Categories: categories,
		Locations:  locations,
	}, "", "  ")
	if err != nil {
		return res, fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := r.put(ctx, path.Join(res.Prefix, "catalog.json"), "application/json", doc); err != nil {
		return res, err
	}
	res.Objects++

	var csv bytes.Buffer
	if err := export.WriteCSV(&csv, items, categories); err != nil {
		return res, fmt.Errorf("exporting csv: %w", err)
	}
	if err := r.put(ctx, path.Join(res.Prefix, "items.csv"), "text/csv", csv.Bytes()); err != nil {
		return res, err
	}
	res.Objects++

	ids, err := r.photos.List()
	if err != nil {
		return res, fmt.Errorf("listing photos: %w", err)
	}
	for _, id := range ids {
		data, err := r.photos.Load(id)
		if err != nil {
			slog.Warn("skipping photo in backup", "photo", id, "error", err)
			res.Skipped++
			continue
		}
		if err := r.put(ctx, path.Join(res.Prefix, "photos", id+".jpg"), imaging.MIME, data); err != nil {
			return res, err
		}
		res.Objects++
		res.Photos++
	}

	state, err := r.state.LoadAppState(ctx)
	if err != nil {
		return res, fmt.Errorf("loading app state: %w", err)
	}
	state.LastBackupDate = &started
	if err := r.state.SaveAppState(ctx, state); err != nil {
		return res, fmt.Errorf("saving app state: %w", err)
	}

	slog.Info("backup finished", "bucket", r.bucket, "prefix", res.Prefix, "objects", res.Objects)
	return res, nil
}

func (r *Runner) put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := r.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}
