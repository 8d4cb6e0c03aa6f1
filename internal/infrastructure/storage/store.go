// Package storage provides the artifact store abstraction used for rendered
// report documents, with a local filesystem backend and a MinIO backend.
package storage

import (
	"context"
	"regexp"

	"github.com/medmuse/medmuse-backend/pkg/errors"
)

// ArtifactStore persists rendered report artifacts under opaque string keys.
// Keys are server-assigned (reports/<userID>/<reportID>.<ext>) and never built
// from user-supplied strings.
type ArtifactStore interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the stored bytes.  A missing key yields ErrCodeArtifactNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object.  Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key holds an object.
	Exists(ctx context.Context, key string) (bool, error)
}

// Keys are a fixed shape: slash-separated path segments of word characters,
// dots, and dashes, with no empty, "." or ".." segments.
var keySegmentRe = regexp.MustCompile(`^[A-Za-z0-9_\-][A-Za-z0-9_\-.]*$`)

// ValidateKey rejects keys that could escape the store's namespace.  Both
// backends call it before touching the key, so a traversal attempt fails the
// same way regardless of backend.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New(errors.ErrCodeStorageKeyInvalid, "artifact key is empty")
	}
	start := 0
	for i := 0; i <= len(key); i++ {
		if i < len(key) && key[i] != '/' {
			continue
		}
		seg := key[start:i]
		if !keySegmentRe.MatchString(seg) || seg == "." || seg == ".." {
			return errors.New(errors.ErrCodeStorageKeyInvalid, "artifact key contains invalid segment").WithDetail(key)
		}
		start = i + 1
	}
	return nil
}
