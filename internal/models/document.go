package models

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType classifies a controlled document. Each type owns its own code
// prefix and numbering sequence.
type DocumentType string

const (
	TypeManual      DocumentType = "manual"
	TypeProcedure   DocumentType = "procedure"
	TypeInstruction DocumentType = "instruction"
	TypeFormat      DocumentType = "format"
	TypeRecord      DocumentType = "record"
	TypePolicy      DocumentType = "policy"
	TypeOther       DocumentType = "other"
)

// DocumentTypes lists every type in display order.
var DocumentTypes = []DocumentType{
	TypeManual, TypeProcedure, TypeInstruction, TypeFormat, TypeRecord, TypePolicy, TypeOther,
}

// typeAliases maps the record keeper's Spanish vocabulary onto the canonical types.
var typeAliases = map[string]DocumentType{
	"procedimiento": TypeProcedure,
	"instruccion":   TypeInstruction,
	"instrucción":   TypeInstruction,
	"formato":       TypeFormat,
	"registro":      TypeRecord,
	"politica":      TypePolicy,
	"política":      TypePolicy,
	"otro":          TypeOther,
}

// ParseDocumentType accepts canonical names and their Spanish aliases.
func ParseDocumentType(s string) (DocumentType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if t, ok := typeAliases[key]; ok {
		return t, nil
	}
	t := DocumentType(key)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	_, ok := codePrefixes[t]
	return ok
}

// Status is a document's position in the approval workflow.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusPublished Status = "published"
	StatusObsolete  Status = "obsolete"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusDraft, StatusInReview, StatusApproved, StatusPublished, StatusObsolete}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Document is the controlled record persisted in the record store.
type Document struct {
	ID          string       `firestore:"-" json:"id"`
	Code        string       `firestore:"code" json:"code"`
	Title       string       `firestore:"title" json:"title"`
	Description string       `firestore:"description,omitempty" json:"description,omitempty"`
	Type        DocumentType `firestore:"type" json:"type"`
	Status      Status       `firestore:"status" json:"status"`
	Version     string       `firestore:"version" json:"version"`
	Process     string       `firestore:"process,omitempty" json:"process,omitempty"`
	NormPoints  []string     `firestore:"normPoints,omitempty" json:"normPoints,omitempty"`
	Keywords    []string     `firestore:"keywords,omitempty" json:"keywords,omitempty"`
	Owner       string       `firestore:"owner,omitempty" json:"owner,omitempty"`

	EffectiveDate *time.Time `firestore:"effectiveDate,omitempty" json:"effectiveDate,omitempty"`
	ReviewDate    *time.Time `firestore:"reviewDate,omitempty" json:"reviewDate,omitempty"`
	ApprovedBy    string     `firestore:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time `firestore:"approvedAt,omitempty" json:"approvedAt,omitempty"`

	FilePath      string `firestore:"filePath,omitempty" json:"filePath,omitempty"`
	FileName      string `firestore:"fileName,omitempty" json:"fileName,omitempty"`
	FileSize      int64  `firestore:"fileSize,omitempty" json:"fileSize,omitempty"`
	MimeType      string `firestore:"mimeType,omitempty" json:"mimeType,omitempty"`
	PageCount     int    `firestore:"pageCount,omitempty" json:"pageCount,omitempty"`
	DownloadURL   string `firestore:"downloadUrl,omitempty" json:"downloadUrl,omitempty"`
	DownloadCount int64  `firestore:"downloadCount" json:"downloadCount"`

	IsArchived bool `firestore:"isArchived" json:"isArchived"`

	CreatedBy string    `firestore:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedBy string    `firestore:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// HasAttachment reports whether a binary file is attached.
func (d *Document) HasAttachment() bool {
	return d.FilePath != ""
}

// ClearAttachment resets every attachment field except the download counter,
// which only ever grows.
func (d *Document) ClearAttachment() {
	d.FilePath = ""
	d.FileName = ""
	d.FileSize = 0
	d.MimeType = ""
	d.PageCount = 0
	d.DownloadURL = ""
}

// Clone returns a deep copy so callers can't alias slices or time pointers.
func (d Document) Clone() Document {
	c := d
	c.NormPoints = cloneStrings(d.NormPoints)
	c.Keywords = cloneStrings(d.Keywords)
	c.EffectiveDate = cloneTime(d.EffectiveDate)
	c.ReviewDate = cloneTime(d.ReviewDate)
	c.ApprovedAt = cloneTime(d.ApprovedAt)
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Filter narrows document listings. Zero values mean "any".
type Filter struct {
	Type            DocumentType
	Status          Status
	Process         string
	NormPoint       string
	IncludeArchived bool
}

// Match reports whether d satisfies every set field of f.
func (f Filter) Match(d *Document) bool {
	if d.IsArchived && !f.IncludeArchived {
		return false
	}
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.Process != "" && d.Process != f.Process {
		return false
	}
	if f.NormPoint != "" && !contains(d.NormPoints, f.NormPoint) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Pagination selects a window of a listing. Page is 1-based.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the pagination into valid bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Page is one window of a document listing.
type Page struct {
	Items      []Document `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}
