package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/qualitydocs/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig names the collections the store writes to.
type FirestoreConfig struct {
	DocumentsCollection string
	VersionsCollection  string
	CountersCollection  string
}

// FirestoreStore keeps documents, versions and per-type counters in three
// top-level collections. Version records reference their document through
// the documentId field rather than living under it, so history survives the
// deletion of its document.
type FirestoreStore struct {
	client   *firestore.Client
	docs     *firestore.CollectionRef
	versions *firestore.CollectionRef
	counters *firestore.CollectionRef
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore wraps an existing client.
func NewFirestoreStore(client *firestore.Client, cfg FirestoreConfig) *FirestoreStore {
	return &FirestoreStore{
		client:   client,
		docs:     client.Collection(cfg.DocumentsCollection),
		versions: client.Collection(cfg.VersionsCollection),
		counters: client.Collection(cfg.CountersCollection),
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// Create assigns the code and inserts the document in one transaction. The
// counter document is read and written by every creation of the same type,
// so concurrent creations contend on it and Firestore retries the loser.
func (s *FirestoreStore) Create(ctx context.Context, doc models.Document) (*models.Document, error) {
	ref := s.docs.NewDoc()
	counterRef := s.counters.Doc(string(doc.Type))
	var created models.Document

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		n, err := s.nextCode(ctx, tx, counterRef, doc.Type)
		if err != nil {
			return err
		}
		working := doc.Clone()
		working.Code = models.FormatCode(doc.Type, n)
		if err := tx.Set(counterRef, counter{Type: doc.Type, Last: n}); err != nil {
			return fmt.Errorf("failed to stage counter update: %w", err)
		}
		if err := tx.Create(ref, working); err != nil {
			return fmt.Errorf("failed to stage document create: %w", err)
		}
		working.ID = ref.ID
		created = working
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &created, nil
}

func (s *FirestoreStore) PeekCode(ctx context.Context, t models.DocumentType) (string, error) {
	var code string
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		n, err := s.nextCode(ctx, tx, s.counters.Doc(string(t)), t)
		if err != nil {
			return err
		}
		code = models.FormatCode(t, n)
		return nil
	}, firestore.ReadOnly)
	if err != nil {
		return "", fmt.Errorf("failed to peek code: %w", err)
	}
	return code, nil
}

// nextCode reads the counter, seeding it from the existing codes of the type
// the first time the type is numbered.
func (s *FirestoreStore) nextCode(ctx context.Context, tx *firestore.Transaction, counterRef *firestore.DocumentRef, t models.DocumentType) (int, error) {
	snap, err := tx.Get(counterRef)
	switch {
	case err == nil:
		var c counter
		if err := snap.DataTo(&c); err != nil {
			return 0, fmt.Errorf("failed to decode counter %s: %w", t, err)
		}
		return c.Last + 1, nil
	case isNotFound(err):
	default:
		return 0, fmt.Errorf("failed to read counter %s: %w", t, err)
	}

	existing, err := tx.Documents(s.docs.Where("type", "==", string(t))).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to scan codes for %s: %w", t, err)
	}
	codes := make([]string, 0, len(existing))
	for _, d := range existing {
		if c, ok := d.Data()["code"].(string); ok {
			codes = append(codes, c)
		}
	}
	return models.NextCodeNumber(t, codes, 0), nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*models.Document, error) {
	snap, err := s.docs.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return decodeDocument(snap)
}

func decodeDocument(snap *firestore.DocumentSnapshot) (*models.Document, error) {
	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
	}
	doc.ID = snap.Ref.ID
	return &doc, nil
}

// List pushes equality filters down to Firestore and sorts in memory, which
// avoids a composite index per filter combination.
func (s *FirestoreStore) List(ctx context.Context, f models.Filter) ([]models.Document, error) {
	q := s.docs.Query
	if !f.IncludeArchived {
		q = q.Where("isArchived", "==", false)
	}
	if f.Type != "" {
		q = q.Where("type", "==", string(f.Type))
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.Process != "" {
		q = q.Where("process", "==", f.Process)
	}
	if f.NormPoint != "" {
		q = q.Where("normPoints", "array-contains", f.NormPoint)
	}

	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	out := make([]models.Document, 0, len(snaps))
	for _, snap := range snaps {
		doc, err := decodeDocument(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FirestoreStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Document, error) {
	ref := s.docs.Doc(id)
	var result models.Document

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to read document %s: %w", id, err)
		}
		doc, err := decodeDocument(snap)
		if err != nil {
			return err
		}
		v, err := fn(doc)
		if err != nil {
			return err
		}
		doc.ID = id
		if v != nil {
			rec := *v
			rec.DocumentID = id
			if err := tx.Create(s.versions.NewDoc(), rec); err != nil {
				return fmt.Errorf("failed to stage version record: %w", err)
			}
		}
		if err := tx.Set(ref, doc); err != nil {
			return fmt.Errorf("failed to stage document write: %w", err)
		}
		result = *doc
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("transaction on document %s failed: %w", id, err)
	}
	return &result, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.docs.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) Versions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	snaps, err := s.versions.Where("documentId", "==", documentID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", documentID, err)
	}
	out := make([]models.DocumentVersion, 0, len(snaps))
	for _, snap := range snaps {
		v, err := decodeVersion(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	return out, nil
}

func (s *FirestoreStore) Version(ctx context.Context, versionID string) (*models.DocumentVersion, error) {
	snap, err := s.versions.Doc(versionID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get version %s: %w", versionID, err)
	}
	return decodeVersion(snap)
}

func decodeVersion(snap *firestore.DocumentSnapshot) (*models.DocumentVersion, error) {
	var v models.DocumentVersion
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("failed to decode version %s: %w", snap.Ref.ID, err)
	}
	v.ID = snap.Ref.ID
	return &v, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
