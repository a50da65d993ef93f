package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/blob"
	"github.com/Lllllllleong/qualitydocs/internal/calendar"
	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/services"
	"github.com/Lllllllleong/qualitydocs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useMemoryService points the CLI at an in-memory service for the test.
func useMemoryService(t *testing.T) *services.DocumentService {
	t.Helper()
	svc := services.NewDocumentService(
		store.NewMemoryStore(),
		blob.NewMemoryStore("attachments"),
		calendar.NewSynchronizer(nil, 0),
		services.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
	)
	prev := newService
	newService = func(context.Context) (*services.DocumentService, error) { return svc, nil }
	t.Cleanup(func() { newService = prev })
	return svc
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCodeCommand(t *testing.T) {
	svc := useMemoryService(t)
	_, err := svc.Create(context.Background(), models.CreateDocumentRequest{Title: "a", Type: models.TypeProcedure}, "t")
	require.NoError(t, err)

	out, err := run(t, "code", "procedimiento")
	require.NoError(t, err)
	assert.Equal(t, "PROC-002\n", out)

	out, err = run(t, "--format", "json", "code", "manual")
	require.NoError(t, err)
	var resp models.CodeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "MAN-001", resp.Code)

	_, err = run(t, "code", "memo")
	assert.ErrorIs(t, err, services.ErrInvalidDocument)
}

func TestInvalidFormat(t *testing.T) {
	useMemoryService(t)
	_, err := run(t, "--format", "yaml", "stats")
	assert.ErrorContains(t, err, "invalid format")
}

func TestStatsAndArchive(t *testing.T) {
	svc := useMemoryService(t)
	doc, err := svc.Create(context.Background(), models.CreateDocumentRequest{Title: "Old policy", Type: models.TypePolicy}, "t")
	require.NoError(t, err)

	out, err := run(t, "archive", doc.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "POL-001")

	out, err = run(t, "--format", "json", "stats")
	require.NoError(t, err)
	var stats models.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 1, stats.Archived)

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "archived")
}

func TestExpiringAndExpired(t *testing.T) {
	svc := useMemoryService(t)
	soon := time.Now().Add(72 * time.Hour)
	past := time.Now().Add(-72 * time.Hour)
	_, err := svc.Create(context.Background(), models.CreateDocumentRequest{Title: "Soon", Type: models.TypeFormat, ReviewDate: &soon}, "t")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), models.CreateDocumentRequest{Title: "Late", Type: models.TypeFormat, ReviewDate: &past}, "t")
	require.NoError(t, err)

	out, err := run(t, "expiring", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Soon")
	assert.NotContains(t, out, "Late")

	out, err = run(t, "--format", "json", "expired")
	require.NoError(t, err)
	var docs []models.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Late", docs[0].Title)
}

func TestHistoryCommand(t *testing.T) {
	svc := useMemoryService(t)
	doc, err := svc.Create(context.Background(), models.CreateDocumentRequest{Title: "Manual", Type: models.TypeManual}, "t")
	require.NoError(t, err)
	_, err = svc.CreateVersion(context.Background(), doc.ID, "annual review", "t")
	require.NoError(t, err)

	out, err := run(t, "history", doc.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "annual review")
	assert.Contains(t, out, "1.0")
}
