package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps files on the local filesystem under outputDir.
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates outputDir if needed.
func NewLocalStorage(outputDir string) (*LocalStorage, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", outputDir, err)
	}
	return &LocalStorage{outputDir: outputDir}, nil
}

// Store moves the file into the output directory unless it is already there.
func (s *LocalStorage) Store(ctx context.Context, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	dest := filepath.Join(s.outputDir, filepath.Base(localPath))
	if sameFile(localPath, dest) {
		return localPath, nil
	}

	if err := os.Rename(localPath, dest); err != nil {
		// rename fails across filesystems
		if err := copyFile(localPath, dest); err != nil {
			return "", err
		}
		if err := os.Remove(localPath); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", localPath, err)
		}
	}
	return dest, nil
}

func (s *LocalStorage) Close() error {
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
