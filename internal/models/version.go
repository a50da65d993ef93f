package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BaselineVersion is the label every new document starts at.
const BaselineVersion = "1.0"

// NextMinorVersion increments the minor component of a "major.minor" label.
// The major component is never bumped; minor grows without bound.
func NextMinorVersion(label string) (string, error) {
	major, minor, err := parseVersion(label)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}

func parseVersion(label string) (major, minor int, err error) {
	majorStr, minorStr, found := strings.Cut(strings.TrimSpace(label), ".")
	if !found {
		return 0, 0, fmt.Errorf("malformed version label %q", label)
	}
	if major, err = strconv.Atoi(majorStr); err != nil || major < 0 {
		return 0, 0, fmt.Errorf("malformed major component in %q", label)
	}
	if minor, err = strconv.Atoi(minorStr); err != nil || minor < 0 {
		return 0, 0, fmt.Errorf("malformed minor component in %q", label)
	}
	return major, minor, nil
}

// Snapshot is a point-in-time copy of a document's content fields. It holds
// values only, never a reference to the live document, and omits the
// document's own timestamps.
type Snapshot struct {
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

	FilePath    string `firestore:"filePath,omitempty" json:"filePath,omitempty"`
	FileName    string `firestore:"fileName,omitempty" json:"fileName,omitempty"`
	FileSize    int64  `firestore:"fileSize,omitempty" json:"fileSize,omitempty"`
	MimeType    string `firestore:"mimeType,omitempty" json:"mimeType,omitempty"`
	PageCount   int    `firestore:"pageCount,omitempty" json:"pageCount,omitempty"`
	DownloadURL string `firestore:"downloadUrl,omitempty" json:"downloadUrl,omitempty"`
}

// TakeSnapshot copies the content fields of d.
func TakeSnapshot(d Document) Snapshot {
	c := d.Clone()
	return Snapshot{
		Code:          c.Code,
		Title:         c.Title,
		Description:   c.Description,
		Type:          c.Type,
		Status:        c.Status,
		Version:       c.Version,
		Process:       c.Process,
		NormPoints:    c.NormPoints,
		Keywords:      c.Keywords,
		Owner:         c.Owner,
		EffectiveDate: c.EffectiveDate,
		ReviewDate:    c.ReviewDate,
		ApprovedBy:    c.ApprovedBy,
		ApprovedAt:    c.ApprovedAt,
		FilePath:      c.FilePath,
		FileName:      c.FileName,
		FileSize:      c.FileSize,
		MimeType:      c.MimeType,
		PageCount:     c.PageCount,
		DownloadURL:   c.DownloadURL,
	}
}

// ApplyTo overwrites d's restorable fields with the snapshot's values.
// Identity, code, type, the live version label, the download counter and the
// archive flag stay as they are on d. Status and approval are kept too: status
// only moves through the transition table, so a restore never reopens an
// obsolete document.
func (s Snapshot) ApplyTo(d *Document) {
	d.Title = s.Title
	d.Description = s.Description
	d.Process = s.Process
	d.NormPoints = cloneStrings(s.NormPoints)
	d.Keywords = cloneStrings(s.Keywords)
	d.Owner = s.Owner
	d.EffectiveDate = cloneTime(s.EffectiveDate)
	d.ReviewDate = cloneTime(s.ReviewDate)
	d.FilePath = s.FilePath
	d.FileName = s.FileName
	d.FileSize = s.FileSize
	d.MimeType = s.MimeType
	d.PageCount = s.PageCount
	d.DownloadURL = s.DownloadURL
}

// DocumentVersion is an append-only history entry. Version is the label the
// document carried before the change that produced this entry.
type DocumentVersion struct {
	ID           string    `firestore:"-" json:"id"`
	DocumentID   string    `firestore:"documentId" json:"documentId"`
	Version      string    `firestore:"version" json:"version"`
	ChangeReason string    `firestore:"changeReason" json:"changeReason"`
	ChangedBy    string    `firestore:"changedBy,omitempty" json:"changedBy,omitempty"`
	ChangedAt    time.Time `firestore:"changedAt" json:"changedAt"`
	Snapshot     *Snapshot `firestore:"snapshot,omitempty" json:"snapshot,omitempty"`
}
