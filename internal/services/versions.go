package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/store"
)

// CreateVersion records the document's current state in its history and
// bumps the minor component of its label, all in one transaction. It returns
// the label the document moved to.
func (s *DocumentService) CreateVersion(ctx context.Context, id, reason, actor string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", ErrChangeReasonRequired
	}
	var label string
	_, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		v, err := s.snapshotAndBump(doc, reason, actor)
		if err != nil {
			return nil, err
		}
		label = doc.Version
		return v, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create version of %s: %w", id, err)
	}
	s.logger.Info("Version created.", "documentId", id, "version", label, "actor", actor)
	return label, nil
}

// snapshotAndBump builds the history entry for doc's current state and moves
// doc to the next minor label.
func (s *DocumentService) snapshotAndBump(doc *models.Document, reason, actor string) (*models.DocumentVersion, error) {
	next, err := models.NextMinorVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	snap := models.TakeSnapshot(*doc)
	now := s.now()
	v := &models.DocumentVersion{
		DocumentID:   doc.ID,
		Version:      doc.Version,
		ChangeReason: reason,
		ChangedBy:    actor,
		ChangedAt:    now,
		Snapshot:     &snap,
	}
	doc.Version = next
	doc.UpdatedBy = actor
	doc.UpdatedAt = now
	return v, nil
}

// RestoreVersion brings a document back to a recorded snapshot. The current
// state is recorded first, in the same transaction, so no restore loses data.
func (s *DocumentService) RestoreVersion(ctx context.Context, id, versionID, actor string) (*models.Document, error) {
	v, err := s.GetVersion(ctx, id, versionID)
	if err != nil {
		return nil, err
	}
	if v.Snapshot == nil {
		return nil, fmt.Errorf("%w: version %s carries no snapshot", ErrVersionNotFound, versionID)
	}
	reason := fmt.Sprintf("restoration from version %s", v.Version)

	var reviewChanged, hadReview bool
	restored, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		before := doc.ReviewDate
		hadReview = before != nil
		rec, err := s.snapshotAndBump(doc, reason, actor)
		if err != nil {
			return nil, err
		}
		v.Snapshot.ApplyTo(doc)
		reviewChanged = !sameInstant(before, doc.ReviewDate)
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore %s to version %s: %w", id, versionID, err)
	}

	logCtx := s.logger.With("documentId", id, "restoredFrom", v.Version)
	logCtx.Info("Version restored.", "newVersion", restored.Version, "actor", actor)
	if reviewChanged {
		s.discard(logCtx, s.calendar.Reschedule(ctx, *restored, hadReview, true))
	}
	return restored, nil
}

// GetVersionHistory lists a document's history, newest first. History
// outlives the document, so a deleted document still has one.
func (s *DocumentService) GetVersionHistory(ctx context.Context, id string) ([]models.DocumentVersion, error) {
	versions, err := s.store.Versions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", id, err)
	}
	return versions, nil
}

// GetVersion returns one history entry of the document.
func (s *DocumentService) GetVersion(ctx context.Context, id, versionID string) (*models.DocumentVersion, error) {
	v, err := s.store.Version(ctx, versionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, versionID)
		}
		return nil, fmt.Errorf("failed to load version %s: %w", versionID, err)
	}
	if v.DocumentID != id {
		return nil, fmt.Errorf("%w: %s does not belong to document %s", ErrVersionNotFound, versionID, id)
	}
	return v, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
