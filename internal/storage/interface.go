package storage

import (
	"context"
	"fmt"

	"github.com/jaki95/playlist-downloader/config"
)

// Storage defines where fetched audio files end up.
type Storage interface {
	// Store takes ownership of a fetched file and returns its final location.
	Store(ctx context.Context, localPath string) (string, error)

	Close() error
}

// New creates the storage backend selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg.OutputDir)
	case "gcs":
		s, err := NewGCSStorage(ctx, cfg.Bucket, cfg.Prefix, cfg.CredentialsFile, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
