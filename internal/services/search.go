package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Lllllllleong/qualitydocs/internal/models"
)

// GetByID returns a document whether or not it is archived.
func (s *DocumentService) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	return doc, nil
}

// GetAll lists documents, newest first.
func (s *DocumentService) GetAll(ctx context.Context, includeArchived bool) ([]models.Document, error) {
	return s.list(ctx, models.Filter{IncludeArchived: includeArchived})
}

// GetPaginated returns one page of the filtered listing, newest first.
func (s *DocumentService) GetPaginated(ctx context.Context, f models.Filter, p models.Pagination) (*models.Page, error) {
	docs, err := s.list(ctx, f)
	if err != nil {
		return nil, err
	}
	p = p.Normalize()
	page := &models.Page{
		Items:      []models.Document{},
		Total:      len(docs),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: (len(docs) + p.PageSize - 1) / p.PageSize,
	}
	start := (p.Page - 1) * p.PageSize
	if start >= len(docs) {
		return page, nil
	}
	end := min(start+p.PageSize, len(docs))
	page.Items = docs[start:end]
	return page, nil
}

// Search matches term case-insensitively against title, description, code
// and keywords. An empty term matches every live document.
func (s *DocumentService) Search(ctx context.Context, term string) ([]models.Document, error) {
	docs, err := s.list(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return docs, nil
	}
	var out []models.Document
	for _, d := range docs {
		if matchesTerm(d, needle) {
			out = append(out, d)
		}
	}
	return out, nil
}

func matchesTerm(d models.Document, needle string) bool {
	for _, field := range []string{d.Title, d.Description, d.Code} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	for _, k := range d.Keywords {
		if strings.Contains(strings.ToLower(k), needle) {
			return true
		}
	}
	return false
}

func (s *DocumentService) GetByType(ctx context.Context, t models.DocumentType) ([]models.Document, error) {
	return s.list(ctx, models.Filter{Type: t})
}

func (s *DocumentService) GetByStatus(ctx context.Context, st models.Status) ([]models.Document, error) {
	return s.list(ctx, models.Filter{Status: st})
}

func (s *DocumentService) GetByProcess(ctx context.Context, process string) ([]models.Document, error) {
	return s.list(ctx, models.Filter{Process: process})
}

func (s *DocumentService) GetByNormPoint(ctx context.Context, normPoint string) ([]models.Document, error) {
	return s.list(ctx, models.Filter{NormPoint: normPoint})
}

// list returns the filtered set ordered by creation time, newest first.
func (s *DocumentService) list(ctx context.Context, f models.Filter) ([]models.Document, error) {
	docs, err := s.store.List(ctx, f)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err)
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}
