package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/calendar"
	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)
	doc := f.create(t, models.CreateDocumentRequest{Title: "  Quality manual ", Type: models.TypeManual})

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "MAN-001", doc.Code)
	assert.Equal(t, "Quality manual", doc.Title)
	assert.Equal(t, models.StatusDraft, doc.Status)
	assert.Equal(t, models.BaselineVersion, doc.Version)
	assert.Equal(t, "alice", doc.CreatedBy)
	assert.True(t, doc.CreatedAt.Equal(testNow))
	assert.Empty(t, f.calendar.ops(), "no review date, no reminder")
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, models.CreateDocumentRequest{Title: " ", Type: models.TypeManual}, "alice")
	assert.ErrorIs(t, err, ErrInvalidDocument)
	_, err = f.svc.Create(ctx, models.CreateDocumentRequest{Title: "x", Type: "memo"}, "alice")
	assert.ErrorIs(t, err, ErrInvalidDocument)
	_, err = f.svc.Create(ctx, models.CreateDocumentRequest{Title: "x", Type: models.TypeManual, Status: "lost"}, "alice")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestCreateAcceptsTypeAliases(t *testing.T) {
	f := newFixture(t)
	doc := f.create(t, models.CreateDocumentRequest{Title: "Compras", Type: "procedimiento"})
	assert.Equal(t, models.TypeProcedure, doc.Type)
	assert.Equal(t, "PROC-001", doc.Code)
}

func TestConcurrentCreatesGetUniqueCodes(t *testing.T) {
	f := newFixture(t)
	const n = 25
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := f.svc.Create(context.Background(), models.CreateDocumentRequest{Title: "Form", Type: models.TypeFormat}, "alice")
			if assert.NoError(t, err) {
				codes <- doc.Code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := map[string]bool{}
	for c := range codes {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["FOR-001"])
	assert.True(t, seen["FOR-025"])
}

func TestGenerateCodeSkipsGaps(t *testing.T) {
	f := newFixture(t)
	f.store.Put(models.Document{Code: "PROC-001", Type: models.TypeProcedure, Title: "a", Version: "1.0"})
	f.store.Put(models.Document{Code: "PROC-003", Type: models.TypeProcedure, Title: "b", Version: "1.0"})

	code, err := f.svc.GenerateCode(context.Background(), "procedimiento")
	require.NoError(t, err)
	assert.Equal(t, "PROC-004", code)

	code, err = f.svc.GenerateCode(context.Background(), models.TypeProcedure)
	require.NoError(t, err)
	assert.Equal(t, "PROC-004", code, "generating does not reserve")

	_, err = f.svc.GenerateCode(context.Background(), "memo")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestCalendarFailureDoesNotBlockCreate(t *testing.T) {
	f := newFixture(t)
	f.calendar.err = errors.New("scheduling service down")

	doc := f.create(t, models.CreateDocumentRequest{Title: "Audit plan", ReviewDate: days(20)})
	assert.Equal(t, []calendar.Op{calendar.OpPublish}, f.calendar.ops())

	got, err := f.svc.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Audit plan", got.Title)
}

func TestUpdateAppliesWhitelistedFields(t *testing.T) {
	f := newFixture(t)
	doc := f.create(t, models.CreateDocumentRequest{Title: "Old", Keywords: []string{"a"}})
	f.advance(time.Hour)

	title, owner := "New", "quality"
	keywords := []string{"b", "c"}
	updated, err := f.svc.Update(context.Background(), doc.ID, models.DocumentPatch{
		Title: &title, Owner: &owner, Keywords: &keywords,
	}, "bob")
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "quality", updated.Owner)
	assert.Equal(t, []string{"b", "c"}, updated.Keywords)
	assert.Equal(t, doc.Code, updated.Code)
	assert.Equal(t, doc.Version, updated.Version, "edits do not bump the version")
	assert.Equal(t, "bob", updated.UpdatedBy)
	assert.True(t, updated.UpdatedAt.After(doc.UpdatedAt))
	assert.Empty(t, f.calendar.ops(), "review date untouched")

	empty := " "
	_, err = f.svc.Update(context.Background(), doc.ID, models.DocumentPatch{Title: &empty}, "bob")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestUpdateSyncsReminderOnlyWhenReviewDateChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, models.CreateDocumentRequest{Title: "Calibration", ReviewDate: days(90)})
	require.Equal(t, []calendar.Op{calendar.OpPublish}, f.calendar.ops())

	same := *days(90)
	_, err := f.svc.Update(ctx, doc.ID, models.DocumentPatch{ReviewDate: &same}, "bob")
	require.NoError(t, err)
	assert.Len(t, f.calendar.ops(), 1, "same instant is not a change")

	_, err = f.svc.Update(ctx, doc.ID, models.DocumentPatch{ReviewDate: days(5)}, "bob")
	require.NoError(t, err)
	assert.Equal(t, []calendar.Op{calendar.OpPublish, calendar.OpUpdate}, f.calendar.ops())

	_, err = f.svc.Update(ctx, doc.ID, models.DocumentPatch{ClearReviewDate: true}, "bob")
	require.NoError(t, err)
	assert.Equal(t, calendar.OpDelete, f.calendar.ops()[2])
}

func TestUpdateAddingReviewDatePublishesReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, models.CreateDocumentRequest{Title: "Calibration"})
	require.Empty(t, f.calendar.ops(), "no review date, no reminder")

	_, err := f.svc.Update(ctx, doc.ID, models.DocumentPatch{ReviewDate: days(30)}, "bob")
	require.NoError(t, err)
	assert.Equal(t, []calendar.Op{calendar.OpPublish}, f.calendar.ops())

	_, err = f.svc.Update(ctx, doc.ID, models.DocumentPatch{ReviewDate: days(45)}, "bob")
	require.NoError(t, err)
	assert.Equal(t, []calendar.Op{calendar.OpPublish, calendar.OpUpdate}, f.calendar.ops())
}

func TestDeleteCleansUpAndKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, models.CreateDocumentRequest{Title: "Obsolete form", ReviewDate: days(30)})
	_, err := f.svc.UploadFile(ctx, doc.ID, strings.NewReader("png"), "scan.png", "image/png", 3, "alice")
	require.NoError(t, err)
	_, err = f.svc.CreateVersion(ctx, doc.ID, "before removal", "alice")
	require.NoError(t, err)
	require.Equal(t, 1, f.blobs.Len())

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	_, err = f.svc.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.blobs.Len())
	assert.Contains(t, f.calendar.ops(), calendar.OpDelete)

	history, err := f.svc.GetVersionHistory(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.ErrorIs(t, f.svc.Delete(ctx, doc.ID), ErrNotFound)
}

func TestArchiveHidesButKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, models.CreateDocumentRequest{Title: "Retired", Status: models.StatusPublished})

	archived, err := f.svc.Archive(ctx, doc.ID, "bob")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Equal(t, models.StatusPublished, archived.Status)

	again, err := f.svc.Archive(ctx, doc.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, "bob", again.UpdatedBy, "second archive is a no-op")

	live, err := f.svc.GetAll(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, live)

	all, err := f.svc.GetAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)
}
