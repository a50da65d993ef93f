package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. A single mutex serializes all writes,
// which gives the same per-document and per-type atomicity as the Firestore
// implementation. Used by tests and local runs.
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[string]*models.Document
	order    []string
	versions []models.DocumentVersion
	counters map[models.DocumentType]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]*models.Document),
		counters: make(map[models.DocumentType]int),
	}
}

var _ Store = (*MemoryStore)(nil)

// Put inserts doc verbatim, keeping its code. An empty ID gets a fresh one.
// A seeded counter is raised past the code so Create never hands it out again.
// Meant for seeding and imports.
func (s *MemoryStore) Put(doc models.Document) *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if last, seeded := s.counters[doc.Type]; seeded {
		if n, ok := models.CodeNumber(doc.Type, doc.Code); ok && n > last {
			s.counters[doc.Type] = n
		}
	}
	if _, exists := s.docs[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	c := doc.Clone()
	s.docs[doc.ID] = &c
	out := c.Clone()
	return &out
}

func (s *MemoryStore) Create(_ context.Context, doc models.Document) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.nextCodeLocked(doc.Type)
	s.counters[doc.Type] = n
	doc.ID = uuid.NewString()
	doc.Code = models.FormatCode(doc.Type, n)

	c := doc.Clone()
	s.docs[doc.ID] = &c
	s.order = append(s.order, doc.ID)
	out := c.Clone()
	return &out, nil
}

func (s *MemoryStore) PeekCode(_ context.Context, t models.DocumentType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.FormatCode(t, s.nextCodeLocked(t)), nil
}

// nextCodeLocked seeds a missing counter from the existing codes of type t.
func (s *MemoryStore) nextCodeLocked(t models.DocumentType) int {
	if last, ok := s.counters[t]; ok {
		return last + 1
	}
	var codes []string
	for _, d := range s.docs {
		if d.Type == t {
			codes = append(codes, d.Code)
		}
	}
	return models.NextCodeNumber(t, codes, 0)
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := d.Clone()
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, f models.Filter) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Document, 0, len(s.order))
	for _, id := range s.order {
		d, ok := s.docs[id]
		if !ok || !f.Match(d) {
			continue
		}
		out = append(out, d.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Mutate(_ context.Context, id string, fn MutateFunc) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := d.Clone()
	v, err := fn(&working)
	if err != nil {
		return nil, err
	}
	working.ID = id
	if v != nil {
		rec := *v
		rec.ID = uuid.NewString()
		rec.DocumentID = id
		if rec.Snapshot != nil {
			snap := *rec.Snapshot
			rec.Snapshot = &snap
		}
		s.versions = append(s.versions, rec)
	}
	s.docs[id] = &working
	out := working.Clone()
	return &out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Versions(_ context.Context, documentID string) ([]models.DocumentVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DocumentVersion
	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].DocumentID == documentID {
			out = append(out, s.versions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	return out, nil
}

func (s *MemoryStore) Version(_ context.Context, versionID string) (*models.DocumentVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.versions {
		if v.ID == versionID {
			out := v
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Close() error { return nil }
