package models

import "time"

// These structs define the JSON payloads accepted and returned by the
// document API.

// CreateDocumentRequest is the input for document creation. Status defaults to
// draft when empty.
type CreateDocumentRequest struct {
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Type          DocumentType `json:"type"`
	Status        Status       `json:"status,omitempty"`
	Process       string       `json:"process,omitempty"`
	NormPoints    []string     `json:"normPoints,omitempty"`
	Keywords      []string     `json:"keywords,omitempty"`
	Owner         string       `json:"owner,omitempty"`
	EffectiveDate *time.Time   `json:"effectiveDate,omitempty"`
	ReviewDate    *time.Time   `json:"reviewDate,omitempty"`
}

// DocumentPatch lists the only fields an ordinary edit may change. Nil means
// "leave as is".
type DocumentPatch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Process       *string    `json:"process,omitempty"`
	NormPoints    *[]string  `json:"normPoints,omitempty"`
	Keywords      *[]string  `json:"keywords,omitempty"`
	Owner         *string    `json:"owner,omitempty"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
	ReviewDate    *time.Time `json:"reviewDate,omitempty"`

	// ClearReviewDate removes the review date and its reminder.
	ClearReviewDate bool `json:"clearReviewDate,omitempty"`
}

// ChangeStatusRequest asks for a workflow transition.
type ChangeStatusRequest struct {
	Status Status `json:"status"`
}

// PublishRequest carries the effective date stamped on publication.
type PublishRequest struct {
	EffectiveDate time.Time `json:"effectiveDate"`
}

// CreateVersionRequest is the input for an explicit version snapshot.
type CreateVersionRequest struct {
	ChangeReason string `json:"changeReason"`
}

// CreateVersionResponse reports the label the document moved to.
type CreateVersionResponse struct {
	Version string `json:"version"`
}

// DownloadResponse carries an attachment locator.
type DownloadResponse struct {
	URL string `json:"url"`
}

// CodeResponse carries a generated document code.
type CodeResponse struct {
	Code string `json:"code"`
}

// Stats summarizes the live document set.
type Stats struct {
	Total          int                  `json:"total"`
	ByStatus       map[Status]int       `json:"byStatus"`
	ByType         map[DocumentType]int `json:"byType"`
	ExpiringSoon   int                  `json:"expiringSoon"`
	Expired        int                  `json:"expired"`
	Archived       int                  `json:"archived"`
	TotalDownloads int64                `json:"totalDownloads"`
}
