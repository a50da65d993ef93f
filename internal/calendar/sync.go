package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/models"
)

// DefaultTimeout bounds every call into the scheduling service.
const DefaultTimeout = 5 * time.Second

// Op names a synchronization call.
type Op string

const (
	OpPublish Op = "publish"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Outcome is the result of one synchronization call. It never propagates to
// the caller of a document operation.
type Outcome struct {
	Op         Op
	DocumentID string
	EventID    string
	Priority   Priority
	Skipped    bool
	Err        error
}

// Failed reports whether the call was attempted and failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Synchronizer maps document changes onto reminder calls.
type Synchronizer struct {
	client  Client
	timeout time.Duration
	now     func() time.Time
}

// NewSynchronizer returns a Synchronizer. A nil client disables
// synchronization; every call then reports Skipped.
func NewSynchronizer(client Client, timeout time.Duration) *Synchronizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synchronizer{client: client, timeout: timeout, now: time.Now}
}

// WithClock replaces the time source used for priorities.
func (s *Synchronizer) WithClock(now func() time.Time) *Synchronizer {
	s.now = now
	return s
}

// Enabled reports whether a client is configured.
func (s *Synchronizer) Enabled() bool { return s != nil && s.client != nil }

// Publish creates the reminder for doc. Documents without a review date are skipped.
func (s *Synchronizer) Publish(ctx context.Context, doc models.Document) Outcome {
	out := Outcome{Op: OpPublish, DocumentID: doc.ID}
	if !s.Enabled() || doc.ReviewDate == nil {
		out.Skipped = true
		return out
	}
	out.Priority = PriorityFor(*doc.ReviewDate, s.now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out.EventID, out.Err = s.client.Publish(ctx, Topic, Event{
		Title:       reminderTitle(doc),
		Description: doc.Description,
		Start:       *doc.ReviewDate,
		AllDay:      true,
		Type:        EventTypeReview,
		Priority:    out.Priority,
		Relation:    Topic,
		SourceID:    doc.ID,
	})
	return out
}

// Update moves the reminder to doc's current review date, retitling it when
// retitle is set. A cleared review date deletes the reminder.
func (s *Synchronizer) Update(ctx context.Context, doc models.Document, retitle bool) Outcome {
	if s.Enabled() && doc.ReviewDate == nil {
		return s.Delete(ctx, doc.ID)
	}
	out := Outcome{Op: OpUpdate, DocumentID: doc.ID}
	if !s.Enabled() {
		out.Skipped = true
		return out
	}
	out.Priority = PriorityFor(*doc.ReviewDate, s.now())

	patch := Patch{Start: doc.ReviewDate, Priority: &out.Priority}
	if retitle {
		title := reminderTitle(doc)
		patch.Title = &title
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out.Err = s.client.Update(ctx, Topic, doc.ID, patch)
	return out
}

// Reschedule follows a review date change on doc. A document that had no
// review date before never had a reminder, so one is published instead.
func (s *Synchronizer) Reschedule(ctx context.Context, doc models.Document, hadReview, retitle bool) Outcome {
	if !hadReview {
		return s.Publish(ctx, doc)
	}
	return s.Update(ctx, doc, retitle)
}

// Delete removes the reminder for the document id.
func (s *Synchronizer) Delete(ctx context.Context, documentID string) Outcome {
	out := Outcome{Op: OpDelete, DocumentID: documentID}
	if !s.Enabled() {
		out.Skipped = true
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out.Err = s.client.Delete(ctx, Topic, documentID)
	return out
}

func reminderTitle(doc models.Document) string {
	return fmt.Sprintf("Document review: %s %s", doc.Code, doc.Title)
}
