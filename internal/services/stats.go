package services

import (
	"context"
	"sort"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/models"
)

// ExpiringWindowDays is the horizon GetStats uses for "expiring soon".
const ExpiringWindowDays = 30

// GetStats summarizes the live set. Archived documents are only counted in
// Archived.
func (s *DocumentService) GetStats(ctx context.Context) (*models.Stats, error) {
	docs, err := s.list(ctx, models.Filter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	now := s.now()
	horizon := now.AddDate(0, 0, ExpiringWindowDays)
	stats := &models.Stats{
		ByStatus: make(map[models.Status]int, len(models.Statuses)),
		ByType:   make(map[models.DocumentType]int, len(models.DocumentTypes)),
	}
	for _, d := range docs {
		if d.IsArchived {
			stats.Archived++
			continue
		}
		stats.Total++
		stats.ByStatus[d.Status]++
		stats.ByType[d.Type]++
		stats.TotalDownloads += d.DownloadCount
		switch {
		case reviewBetween(d, now, horizon):
			stats.ExpiringSoon++
		case reviewBefore(d, now):
			stats.Expired++
		}
	}
	return stats, nil
}

// GetExpiringSoon lists live documents whose review date falls strictly
// between now and now plus days.
func (s *DocumentService) GetExpiringSoon(ctx context.Context, days int) ([]models.Document, error) {
	docs, err := s.list(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	horizon := now.AddDate(0, 0, days)
	var out []models.Document
	for _, d := range docs {
		if reviewBetween(d, now, horizon) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewDate.Before(*out[j].ReviewDate) })
	return out, nil
}

// GetExpired lists live documents whose review date has passed.
func (s *DocumentService) GetExpired(ctx context.Context) ([]models.Document, error) {
	docs, err := s.list(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []models.Document
	for _, d := range docs {
		if reviewBefore(d, now) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewDate.Before(*out[j].ReviewDate) })
	return out, nil
}

// GetMostDownloaded returns up to limit live documents by download count,
// highest first. Ties keep newest-first order.
func (s *DocumentService) GetMostDownloaded(ctx context.Context, limit int) ([]models.Document, error) {
	docs, err := s.list(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].DownloadCount > docs[j].DownloadCount })
	return head(docs, limit), nil
}

// GetRecent returns up to limit live documents, newest first.
func (s *DocumentService) GetRecent(ctx context.Context, limit int) ([]models.Document, error) {
	docs, err := s.list(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	return head(docs, limit), nil
}

func head(docs []models.Document, limit int) []models.Document {
	if limit >= 0 && limit < len(docs) {
		return docs[:limit]
	}
	return docs
}

func reviewBetween(d models.Document, from, to time.Time) bool {
	return d.ReviewDate != nil && d.ReviewDate.After(from) && d.ReviewDate.Before(to)
}

func reviewBefore(d models.Document, t time.Time) bool {
	return d.ReviewDate != nil && d.ReviewDate.Before(t)
}
