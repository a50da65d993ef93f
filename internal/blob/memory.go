package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// MemoryStore is an in-process Store for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	name    string
	objects map[string]*memObject
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store reporting the given bucket name.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{name: bucket, objects: make(map[string]*memObject)}
}

func (s *MemoryStore) Bucket() string { return s.name }

func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, contentType string, metadata map[string]string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("failed to read object %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return ErrObjectExists
	}
	s.objects[key] = &memObject{data: buf.Bytes(), contentType: contentType, metadata: copyMeta(metadata)}
	return nil
}

func (s *MemoryStore) Metadata(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return copyMeta(obj.metadata), nil
}

func (s *MemoryStore) SetMetadata(_ context.Context, key string, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return ErrObjectNotFound
	}
	if obj.metadata == nil {
		obj.metadata = make(map[string]string, len(metadata))
	}
	for k, v := range metadata {
		obj.metadata[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string, ignoreMissing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		if ignoreMissing {
			return nil
		}
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

// Object returns a stored object's bytes and content type.
func (s *MemoryStore) Object(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func copyMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
