// Package calendar keeps a review reminder in the external event-scheduling
// service in step with each document's review date. The reminder is advisory:
// every call is bounded by a timeout and reports its result as an Outcome
// that callers log and drop.
package calendar

import (
	"context"
	"math"
	"time"
)

// Topic is the relation under which document reminders are filed.
const Topic = "documents"

// EventTypeReview tags reminders created for document reviews.
const EventTypeReview = "document_review"

// Priority is a coarse urgency bucket derived from days until review.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DaysUntil returns ceil((target - now) / 24h). Past targets are negative.
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}

// PriorityFor buckets the days remaining until reviewDate.
func PriorityFor(reviewDate, now time.Time) Priority {
	days := DaysUntil(reviewDate, now)
	switch {
	case days < 7:
		return PriorityCritical
	case days < 30:
		return PriorityHigh
	case days < 60:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Event is the reminder published for a document.
type Event struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	AllDay      bool      `json:"allDay"`
	Type        string    `json:"type"`
	Priority    Priority  `json:"priority"`
	Relation    string    `json:"relation"`
	SourceID    string    `json:"sourceId"`
}

// Patch is a partial update of a reminder. Nil fields are unchanged.
type Patch struct {
	Title    *string    `json:"title,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	Priority *Priority  `json:"priority,omitempty"`
}

// Client is the event-scheduling service. Events are addressed by
// (topic, sourceID); deleting a missing event must succeed.
type Client interface {
	Publish(ctx context.Context, topic string, ev Event) (string, error)
	Update(ctx context.Context, topic, sourceID string, patch Patch) error
	Delete(ctx context.Context, topic, sourceID string) error
}
