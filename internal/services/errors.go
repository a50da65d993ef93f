package services

import (
	"errors"
	"fmt"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/store"
)

// Validation failures. They are returned before any side effect and are
// never retried here.
var (
	ErrNotFound             = store.ErrNotFound
	ErrInvalidDocument      = errors.New("invalid document")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrVersionNotFound      = errors.New("version not found")
	ErrChangeReasonRequired = errors.New("change reason is required")
	ErrAttachmentNotFound   = errors.New("document has no attachment")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file too large")
)

// InvalidTransitionError names the rejected edge. It matches
// ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
