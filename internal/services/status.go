package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/models"
)

// transitions is the closed set of workflow edges. There are no implicit
// self-loops and obsolete is terminal.
var transitions = map[models.Status][]models.Status{
	models.StatusDraft:     {models.StatusInReview},
	models.StatusInReview:  {models.StatusDraft, models.StatusApproved},
	models.StatusApproved:  {models.StatusInReview, models.StatusPublished},
	models.StatusPublished: {models.StatusObsolete},
	models.StatusObsolete:  {},
}

// AllowedTransitions lists the statuses reachable from current in one step.
func AllowedTransitions(current models.Status) []models.Status {
	return append([]models.Status(nil), transitions[current]...)
}

// Transition validates the edge current -> requested and returns the new
// status, or an *InvalidTransitionError.
func Transition(current, requested models.Status) (models.Status, error) {
	for _, next := range transitions[current] {
		if next == requested {
			return requested, nil
		}
	}
	return current, &InvalidTransitionError{From: current, To: requested}
}

// ChangeStatus moves the document along one workflow edge.
func (s *DocumentService) ChangeStatus(ctx context.Context, id string, to models.Status, actor string) (*models.Document, error) {
	return s.transition(ctx, id, to, actor, nil)
}

// Approve moves an in-review document to approved and records the approver.
func (s *DocumentService) Approve(ctx context.Context, id, actor string) (*models.Document, error) {
	return s.transition(ctx, id, models.StatusApproved, actor, func(doc *models.Document, now time.Time) {
		doc.ApprovedBy = actor
		doc.ApprovedAt = &now
	})
}

// Publish moves an approved document to published as of effectiveDate.
func (s *DocumentService) Publish(ctx context.Context, id string, effectiveDate time.Time, actor string) (*models.Document, error) {
	return s.transition(ctx, id, models.StatusPublished, actor, func(doc *models.Document, _ time.Time) {
		doc.EffectiveDate = &effectiveDate
	})
}

// MarkObsolete retires a published document.
func (s *DocumentService) MarkObsolete(ctx context.Context, id, actor string) (*models.Document, error) {
	return s.transition(ctx, id, models.StatusObsolete, actor, nil)
}

func (s *DocumentService) transition(ctx context.Context, id string, to models.Status, actor string, stamp func(*models.Document, time.Time)) (*models.Document, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidDocument, to)
	}
	var from models.Status
	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		from = doc.Status
		next, err := Transition(doc.Status, to)
		if err != nil {
			return nil, err
		}
		now := s.now()
		doc.Status = next
		if stamp != nil {
			stamp(doc, now)
		}
		doc.UpdatedBy = actor
		doc.UpdatedAt = now
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to change status of %s: %w", id, err)
	}
	s.logger.Info("Document status changed.", "documentId", id, "from", from, "to", to, "actor", actor)
	return doc, nil
}
