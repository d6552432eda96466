package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs as files directly under a base directory.
type LocalStore struct {
	baseDir string
	maxSize int64
}

// NewLocalStore creates baseDir if needed. maxSize <= 0 disables the limit.
func NewLocalStore(baseDir string, maxSize int64) (*LocalStore, error) {
	if baseDir == "" {
		return nil, errors.New("blob: empty base directory")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &LocalStore{baseDir: abs, maxSize: maxSize}, nil
}

func (s *LocalStore) path(ref string) (string, error) {
	if err := ValidateRef(ref); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, ref), nil
}

func (s *LocalStore) Save(ctx context.Context, ref string, r io.Reader) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, ref)
	}
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}

	_, copyErr := io.Copy(f, newLimitReader(r, s.maxSize))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			if errors.Is(copyErr, ErrTooLarge) {
				return copyErr
			}
			return fmt.Errorf("write blob: %w", copyErr)
		}
		return fmt.Errorf("close blob: %w", closeErr)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Exists(_ context.Context, ref string) (bool, error) {
	path, err := s.path(ref)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat blob: %w", err)
	}
	return info.Mode().IsRegular(), nil
}
