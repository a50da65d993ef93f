package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/blob"
	"github.com/Lllllllleong/qualitydocs/internal/calendar"
	"github.com/Lllllllleong/qualitydocs/internal/gcp"
	"github.com/Lllllllleong/qualitydocs/internal/store"
)

type Config struct {
	ProjectID           string
	FirestoreDatabase   string
	AttachmentsBucket   string
	DocumentsCollection string
	VersionsCollection  string
	CountersCollection  string
	DownloadBaseURL     string
	CalendarEndpoint    string
	CalendarTimeout     time.Duration
}

// LoadConfig reads the service configuration from the environment.
func LoadConfig() (Config, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return Config{}, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	timeout, err := gcp.GetDurationEnv("CALENDAR_TIMEOUT", calendar.DefaultTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		ProjectID:           projectID,
		FirestoreDatabase:   gcp.GetEnv("FIRESTORE_DATABASE", ""),
		AttachmentsBucket:   gcp.GetEnv("ATTACHMENTS_BUCKET", ""),
		DocumentsCollection: gcp.GetEnv("FIRESTORE_COLLECTION", "documents"),
		VersionsCollection:  gcp.GetEnv("VERSIONS_COLLECTION", "document_versions"),
		CountersCollection:  gcp.GetEnv("COUNTERS_COLLECTION", "document_counters"),
		DownloadBaseURL:     gcp.GetEnv("DOWNLOAD_BASE_URL", DefaultDownloadBaseURL),
		CalendarEndpoint:    gcp.GetEnv("CALENDAR_ENDPOINT", ""),
		CalendarTimeout:     timeout,
	}
	if cfg.AttachmentsBucket == "" {
		return Config{}, fmt.Errorf("ATTACHMENTS_BUCKET environment variable must be set")
	}
	return cfg, nil
}

// NewDocumentServiceFromEnv builds the production service over Firestore,
// Cloud Storage and, when CALENDAR_ENDPOINT is set, the scheduling service.
func NewDocumentServiceFromEnv(ctx context.Context) (*DocumentService, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID, cfg.FirestoreDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		_ = firestoreClient.Close()
		return nil, err
	}

	var calendarClient calendar.Client
	if cfg.CalendarEndpoint != "" {
		ce, err := calendar.NewCloudEventsClient(cfg.CalendarEndpoint)
		if err != nil {
			_ = firestoreClient.Close()
			_ = storageClient.Close()
			return nil, fmt.Errorf("failed to create calendar client: %w", err)
		}
		calendarClient = ce
	}

	st := store.NewFirestoreStore(firestoreClient, store.FirestoreConfig{
		DocumentsCollection: cfg.DocumentsCollection,
		VersionsCollection:  cfg.VersionsCollection,
		CountersCollection:  cfg.CountersCollection,
	})
	s := NewDocumentService(
		st,
		blob.NewGCSStore(storageClient, cfg.AttachmentsBucket),
		calendar.NewSynchronizer(calendarClient, cfg.CalendarTimeout),
		Options{DownloadBaseURL: cfg.DownloadBaseURL},
	)
	s.closers = append(s.closers, st.Close, storageClient.Close)

	slog.Info("Document service initialized.",
		"bucket", cfg.AttachmentsBucket,
		"collection", cfg.DocumentsCollection,
		"calendarEnabled", calendarClient != nil)
	return s, nil
}
