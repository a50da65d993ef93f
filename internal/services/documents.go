package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/blob"
	"github.com/Lllllllleong/qualitydocs/internal/calendar"
	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultDownloadBaseURL is the Firebase Storage download host.
const DefaultDownloadBaseURL = "https://firebasestorage.googleapis.com"

// Options tunes a DocumentService. Zero values pick the defaults.
type Options struct {
	DownloadBaseURL string
	Logger          *slog.Logger
	Now             func() time.Time
}

// DocumentService orchestrates the controlled-document lifecycle: codes,
// workflow status, version history, attachments and review reminders.
type DocumentService struct {
	store           store.Store
	blobs           blob.Store
	calendar        *calendar.Synchronizer
	downloadBaseURL string
	logger          *slog.Logger
	now             func() time.Time
	closers         []func() error
}

// NewDocumentService wires the service over its collaborators. A nil
// synchronizer disables reminders.
func NewDocumentService(st store.Store, blobs blob.Store, sync *calendar.Synchronizer, opts Options) *DocumentService {
	s := &DocumentService{
		store:           st,
		blobs:           blobs,
		calendar:        sync,
		downloadBaseURL: strings.TrimRight(opts.DownloadBaseURL, "/"),
		logger:          opts.Logger,
		now:             opts.Now,
	}
	if s.downloadBaseURL == "" {
		s.downloadBaseURL = DefaultDownloadBaseURL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Close releases the underlying clients.
func (s *DocumentService) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Create stores a new document with a freshly assigned code, then publishes
// its review reminder. Reminder failures never fail the creation.
func (s *DocumentService) Create(ctx context.Context, req models.CreateDocumentRequest, actor string) (*models.Document, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidDocument)
	}
	docType, err := models.ParseDocumentType(string(req.Type))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidDocument, status)
	}

	now := s.now()
	doc := models.Document{
		Title:         title,
		Description:   req.Description,
		Type:          docType,
		Status:        status,
		Version:       models.BaselineVersion,
		Process:       req.Process,
		NormPoints:    req.NormPoints,
		Keywords:      req.Keywords,
		Owner:         req.Owner,
		EffectiveDate: req.EffectiveDate,
		ReviewDate:    req.ReviewDate,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedBy:     actor,
		UpdatedAt:     now,
	}
	created, err := s.store.Create(ctx, doc.Clone())
	if err != nil {
		s.logger.Error("Failed to create document", "error", err, "type", docType)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	logCtx := s.logger.With("documentId", created.ID, "code", created.Code)
	logCtx.Info("Document created.", "actor", actor)
	s.discard(logCtx, s.calendar.Publish(ctx, *created))
	return created, nil
}

// Update applies the whitelisted fields of patch. The reminder is moved only
// when the review date actually changed.
func (s *DocumentService) Update(ctx context.Context, id string, patch models.DocumentPatch, actor string) (*models.Document, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidDocument)
	}

	var reviewChanged, titleChanged, hadReview bool
	updated, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		reviewChanged, titleChanged = false, false
		hadReview = doc.ReviewDate != nil
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			titleChanged = title != doc.Title
			doc.Title = title
		}
		if patch.Description != nil {
			doc.Description = *patch.Description
		}
		if patch.Process != nil {
			doc.Process = *patch.Process
		}
		if patch.NormPoints != nil {
			doc.NormPoints = append([]string(nil), (*patch.NormPoints)...)
		}
		if patch.Keywords != nil {
			doc.Keywords = append([]string(nil), (*patch.Keywords)...)
		}
		if patch.Owner != nil {
			doc.Owner = *patch.Owner
		}
		if patch.EffectiveDate != nil {
			t := *patch.EffectiveDate
			doc.EffectiveDate = &t
		}
		switch {
		case patch.ClearReviewDate:
			reviewChanged = doc.ReviewDate != nil
			doc.ReviewDate = nil
		case patch.ReviewDate != nil:
			t := *patch.ReviewDate
			reviewChanged = doc.ReviewDate == nil || !doc.ReviewDate.Equal(t)
			doc.ReviewDate = &t
		}
		doc.UpdatedBy = actor
		doc.UpdatedAt = s.now()
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update document %s: %w", id, err)
	}

	logCtx := s.logger.With("documentId", id)
	logCtx.Info("Document updated.", "actor", actor, "reviewDateChanged", reviewChanged)
	if reviewChanged {
		s.discard(logCtx, s.calendar.Reschedule(ctx, *updated, hadReview, titleChanged))
	}
	return updated, nil
}

// Delete removes the record, then clears its reminder and attachment object
// concurrently. Cleanup failures are logged only.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	logCtx := s.logger.With("documentId", id, "code", doc.Code)
	logCtx.Info("Document deleted.")

	var eg errgroup.Group
	eg.Go(func() error {
		s.discard(logCtx, s.calendar.Delete(ctx, id))
		return nil
	})
	if doc.HasAttachment() {
		eg.Go(func() error {
			if err := s.blobs.Delete(ctx, doc.FilePath, true); err != nil {
				logCtx.Warn("Failed to delete attachment object.", "gcsObject", doc.FilePath, "error", err)
			}
			return nil
		})
	}
	_ = eg.Wait()
	return nil
}

// Archive hides the document from default listings. Status is untouched and
// archiving twice is a no-op.
func (s *DocumentService) Archive(ctx context.Context, id, actor string) (*models.Document, error) {
	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		if !doc.IsArchived {
			doc.IsArchived = true
			doc.UpdatedBy = actor
			doc.UpdatedAt = s.now()
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive document %s: %w", id, err)
	}
	s.logger.Info("Document archived.", "documentId", id, "actor", actor)
	return doc, nil
}

// GenerateCode previews the next code for t without reserving it. Codes are
// reserved only by Create.
func (s *DocumentService) GenerateCode(ctx context.Context, t models.DocumentType) (string, error) {
	docType, err := models.ParseDocumentType(string(t))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	code, err := s.store.PeekCode(ctx, docType)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return code, nil
}

// discard is the single place reminder outcomes end up.
func (s *DocumentService) discard(logCtx *slog.Logger, o calendar.Outcome) {
	switch {
	case o.Skipped:
	case o.Failed():
		logCtx.Warn("Calendar sync failed; document write kept.", "op", o.Op, "error", o.Err)
	default:
		logCtx.Debug("Calendar synced.", "op", o.Op, "eventId", o.EventID, "priority", o.Priority)
	}
}
