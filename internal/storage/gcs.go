package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 5 * time.Minute

// GCSStorage uploads fetched files to a Google Cloud Storage bucket.
type GCSStorage struct {
	client        *storage.Client
	bucket        string
	objectPrefix  string
	publicBaseURL string
}

// NewGCSStorage creates a new GCSStorage instance
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, credentialsFile, publicBaseURL string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// application default credentials
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:        client,
		bucket:        bucketName,
		objectPrefix:  strings.Trim(objectPrefix, "/"),
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Store uploads the file and removes the local copy. It returns the public URL
// when one is configured, otherwise the object name.
func (s *GCSStorage) Store(ctx context.Context, localPath string) (string, error) {
	objectName := s.objectName(filepath.Base(localPath))
	location, err := s.upload(ctx, localPath, objectName)
	if err != nil {
		return "", err
	}
	if err := os.Remove(localPath); err != nil {
		slog.Warn("Failed to remove uploaded file", "path", localPath, "error", err)
	}
	return location, nil
}

func (s *GCSStorage) upload(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	slog.Debug("Uploaded file", "bucket", s.bucket, "object", objectName)
	return s.location(objectName), nil
}

func (s *GCSStorage) objectName(name string) string {
	if s.objectPrefix == "" {
		return name
	}
	return path.Join(s.objectPrefix, name)
}

func (s *GCSStorage) location(objectName string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, objectName)
	}
	return objectName
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
