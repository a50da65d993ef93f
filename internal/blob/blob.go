// Package blob stores attachment bytes and the object metadata that carries
// their download tokens.
package blob

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound is returned when the key has no object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectExists is returned by Put when the key is already taken.
	ErrObjectExists = errors.New("object already exists")
)

// TokenMetadataKey is the metadata entry holding comma-separated download
// tokens, as understood by Firebase Storage download URLs.
const TokenMetadataKey = "firebaseStorageDownloadTokens"

// Store is the blob store consumed by the attachment manager.
type Store interface {
	// Put writes a new object. It never overwrites an existing key.
	Put(ctx context.Context, key string, r io.Reader, contentType string, metadata map[string]string) error
	Metadata(ctx context.Context, key string) (map[string]string, error)
	SetMetadata(ctx context.Context, key string, metadata map[string]string) error
	// Delete removes the object. With ignoreMissing, a missing object is success.
	Delete(ctx context.Context, key string, ignoreMissing bool) error
	// Bucket names the container objects live in, used to build download URLs.
	Bucket() string
}
