package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/blob"
	"github.com/Lllllllleong/qualitydocs/internal/calendar"
	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/store"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type calendarCall struct {
	Op       calendar.Op
	SourceID string
	Patch    calendar.Patch
}

// recordingCalendar is a calendar.Client safe for concurrent use.
type recordingCalendar struct {
	mu    sync.Mutex
	calls []calendarCall
	err   error
}

func (c *recordingCalendar) record(call calendarCall) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.err
}

func (c *recordingCalendar) Publish(_ context.Context, _ string, ev calendar.Event) (string, error) {
	if err := c.record(calendarCall{Op: calendar.OpPublish, SourceID: ev.SourceID}); err != nil {
		return "", err
	}
	return "evt-" + ev.SourceID, nil
}

func (c *recordingCalendar) Update(_ context.Context, _, sourceID string, patch calendar.Patch) error {
	return c.record(calendarCall{Op: calendar.OpUpdate, SourceID: sourceID, Patch: patch})
}

func (c *recordingCalendar) Delete(_ context.Context, _, sourceID string) error {
	return c.record(calendarCall{Op: calendar.OpDelete, SourceID: sourceID})
}

func (c *recordingCalendar) ops() []calendar.Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]calendar.Op, 0, len(c.calls))
	for _, call := range c.calls {
		out = append(out, call.Op)
	}
	return out
}

type fixture struct {
	svc      *DocumentService
	store    *store.MemoryStore
	blobs    *blob.MemoryStore
	calendar *recordingCalendar
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := testNow
	f := &fixture{
		store:    store.NewMemoryStore(),
		blobs:    blob.NewMemoryStore("qms-attachments"),
		calendar: &recordingCalendar{},
		clock:    &now,
	}
	clock := func() time.Time { return *f.clock }
	f.svc = NewDocumentService(
		f.store,
		f.blobs,
		calendar.NewSynchronizer(f.calendar, time.Second).WithClock(clock),
		Options{
			DownloadBaseURL: "https://files.example.test/",
			Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
			Now:             clock,
		},
	)
	return f
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) create(t *testing.T, req models.CreateDocumentRequest) *models.Document {
	t.Helper()
	if req.Title == "" {
		req.Title = "Untitled"
	}
	if req.Type == "" {
		req.Type = models.TypeProcedure
	}
	doc, err := f.svc.Create(context.Background(), req, "alice")
	require.NoError(t, err)
	return doc
}

func days(n int) *time.Time {
	t := testNow.AddDate(0, 0, n)
	return &t
}

// failingStore fails every Mutate, leaving reads intact.
type failingStore struct {
	store.Store
}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Mutate(context.Context, string, store.MutateFunc) (*models.Document, error) {
	return nil, errStoreDown
}
