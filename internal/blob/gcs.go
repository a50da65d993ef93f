package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSStore keeps attachments in a single Cloud Storage bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
	name   string
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore wraps a bucket of an existing client.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{bucket: client.Bucket(bucket), name: bucket}
}

func (s *GCSStore) Bucket() string { return s.name }

// Put writes the object only if it doesn't already exist, so two uploads can
// never silently replace each other's bytes.
func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string, metadata map[string]string) error {
	writer := s.bucket.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType
	writer.Metadata = metadata

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			slog.Warn("Object already exists.", "gcsObject", key)
			return ErrObjectExists
		}
		return fmt.Errorf("failed to finalize GCS write for %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Metadata(ctx context.Context, key string) (map[string]string, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read attrs of %s: %w", key, err)
	}
	out := make(map[string]string, len(attrs.Metadata))
	for k, v := range attrs.Metadata {
		out[k] = v
	}
	return out, nil
}

func (s *GCSStore) SetMetadata(ctx context.Context, key string, metadata map[string]string) error {
	_, err := s.bucket.Object(key).Update(ctx, storage.ObjectAttrsToUpdate{Metadata: metadata})
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to update metadata of %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, key string, ignoreMissing bool) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		if ignoreMissing {
			return nil
		}
		return ErrObjectNotFound
	}
	return fmt.Errorf("failed to delete GCS object %s: %w", key, err)
}
