package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

// FSStore keeps artifacts under a base directory on the local filesystem.
// Writes go to a temp file in the target directory followed by a rename, so
// readers never observe a partially written artifact.
type FSStore struct {
	baseDir string
	logger  logging.Logger
}

func NewFSStore(baseDir string, logger logging.Logger) (*FSStore, error) {
	if baseDir == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "artifact base directory is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "failed to create artifact base directory")
	}
	return &FSStore{baseDir: baseDir, logger: logger.Named("fs-store")}, nil
}

func (s *FSStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "artifact write cancelled")
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "failed to create artifact directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "failed to create temp artifact file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "failed to write artifact")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "failed to close temp artifact file")
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageWriteFailed, "failed to move artifact into place")
	}

	s.logger.Debug("stored artifact",
		logging.String("key", key),
		logging.Int("bytes", len(data)),
	)
	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageReadFailed, "artifact read cancelled")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeArtifactNotFound,
				fmt.Sprintf("artifact %s not found", key))
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageReadFailed, "failed to read artifact")
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeArtifactDeleteFailed, "failed to delete artifact")
	}
	return nil
}

func (s *FSStore) Exists(ctx context.Context, key string) (bool, error) {
	target, err := s.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageReadFailed, "failed to stat artifact")
	}
	return true, nil
}
