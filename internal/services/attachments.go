package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/blob"
	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MaxFileSize is the attachment ceiling: 10 MiB.
const MaxFileSize = 10 << 20

const mimePDF = "application/pdf"

var allowedMimeTypes = map[string]bool{
	mimePDF:              true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateUpload checks the declared type and size, in that order.
func ValidateUpload(mimeType string, size int64) error {
	if !allowedMimeTypes[mimeType] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, mimeType)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, MaxFileSize)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces name to a safe object-name component.
func SanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	sanitized := unsafeFilenameChars.ReplaceAllString(base, "_")
	sanitized = strings.Trim(sanitized, "._")

	const maxLength = 100
	if len(sanitized) > maxLength {
		sanitized = sanitized[len(sanitized)-maxLength:]
		sanitized = strings.TrimLeft(sanitized, "._")
	}
	if sanitized == "" {
		return "file"
	}
	return sanitized
}

// objectKey namespaces the object by document and upload instant so repeat
// uploads of the same name never collide.
func objectKey(documentID, filename string, at time.Time) string {
	return fmt.Sprintf("documents/%s/%d_%s", documentID, at.UnixMilli(), SanitizeFilename(filename))
}

func (s *DocumentService) downloadURL(key, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		s.downloadBaseURL, s.blobs.Bucket(), url.PathEscape(key), url.QueryEscape(token))
}

// UploadFile validates, stores and attaches a file, returning its download
// URL. Validation happens before any byte is read from r.
func (s *DocumentService) UploadFile(ctx context.Context, id string, r io.Reader, filename, mimeType string, size int64, actor string) (string, error) {
	if err := ValidateUpload(mimeType, size); err != nil {
		return "", err
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return "", fmt.Errorf("failed to load document %s: %w", id, err)
	}
	logCtx := s.logger.With("documentId", id, "fileName", filename)

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("%w: body exceeds %d bytes", ErrFileTooLarge, MaxFileSize)
	}
	pageCount := countPages(logCtx, mimeType, data)

	key := objectKey(id, filename, s.now())
	token := uuid.NewString()
	metadata := map[string]string{
		blob.TokenMetadataKey: token,
		"documentId":          id,
		"originalName":        filename,
	}
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), mimeType, metadata); err != nil {
		logCtx.Error("Failed to store attachment", "error", err, "gcsObject", key)
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	downloadURL := s.downloadURL(key, token)

	_, err = s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		doc.FilePath = key
		doc.FileName = filename
		doc.FileSize = int64(len(data))
		doc.MimeType = mimeType
		doc.PageCount = pageCount
		doc.DownloadURL = downloadURL
		doc.UpdatedBy = actor
		doc.UpdatedAt = s.now()
		return nil, nil
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key, true); delErr != nil {
			logCtx.Error("Failed to remove orphaned attachment", "error", delErr, "gcsObject", key)
		}
		return "", fmt.Errorf("failed to attach file to %s: %w", id, err)
	}
	logCtx.Info("Attachment uploaded.", "gcsObject", key, "size", len(data), "pageCount", pageCount)
	return downloadURL, nil
}

// countPages reads the page count of a PDF. Unreadable PDFs are still
// accepted and report zero pages.
func countPages(logCtx *slog.Logger, mimeType string, data []byte) int {
	if mimeType != mimePDF {
		return 0
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		logCtx.Warn("Could not read PDF page count.", "error", err)
		return 0
	}
	return n
}

// DownloadFile counts the download and returns the attachment URL, deriving
// and caching one from the object's token when none is cached.
func (s *DocumentService) DownloadFile(ctx context.Context, id, actor string) (string, error) {
	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentVersion, error) {
		if !doc.HasAttachment() {
			return nil, ErrAttachmentNotFound
		}
		doc.DownloadCount++
		return nil, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to download attachment of %s: %w", id, err)
	}
	logCtx := s.logger.With("documentId", id, "actor", actor)
	if doc.DownloadURL != "" {
		logCtx.Debug("Serving cached download URL.", "downloadCount", doc.DownloadCount)
		return doc.DownloadURL, nil
	}

	token, err := s.ensureToken(ctx, doc.FilePath)
	if err != nil {
		logCtx.Error("Failed to derive download token", "error", err, "gcsObject", doc.FilePath)
		return "", fmt.Errorf("failed to derive download URL for %s: %w", id, err)
	}
	downloadURL := s.downloadURL(doc.FilePath, token)

	_, err = s.store.Mutate(ctx, id, func(cur *models.Document) (*models.DocumentVersion, error) {
		if cur.FilePath == doc.FilePath {
			cur.DownloadURL = downloadURL
		}
		return nil, nil
	})
	if err != nil {
		logCtx.Warn("Failed to cache download URL.", "error", err)
	}
	return downloadURL, nil
}

// ensureToken returns the first download token on the object, minting one
// when the object has none.
func (s *DocumentService) ensureToken(ctx context.Context, key string) (string, error) {
	md, err := s.blobs.Metadata(ctx, key)
	if err != nil {
		return "", err
	}
	for _, t := range strings.Split(md[blob.TokenMetadataKey], ",") {
		if t = strings.TrimSpace(t); t != "" {
			return t, nil
		}
	}
	token := uuid.NewString()
	if err := s.blobs.SetMetadata(ctx, key, map[string]string{blob.TokenMetadataKey: token}); err != nil {
		return "", err
	}
	return token, nil
}

// DeleteFile removes the attachment object, tolerating one that is already
// gone, and clears the attachment fields. The download counter is kept.
func (s *DocumentService) DeleteFile(ctx context.Context, id, actor string) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", id, err)
	}
	if !doc.HasAttachment() {
		return ErrAttachmentNotFound
	}
	logCtx := s.logger.With("documentId", id, "gcsObject", doc.FilePath)
	if err := s.blobs.Delete(ctx, doc.FilePath, true); err != nil && !errors.Is(err, blob.ErrObjectNotFound) {
		logCtx.Warn("Failed to delete attachment object; clearing fields anyway.", "error", err)
	}

	_, err = s.store.Mutate(ctx, id, func(cur *models.Document) (*models.DocumentVersion, error) {
		if cur.FilePath == doc.FilePath {
			cur.ClearAttachment()
			cur.UpdatedBy = actor
			cur.UpdatedAt = s.now()
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear attachment of %s: %w", id, err)
	}
	logCtx.Info("Attachment deleted.", "actor", actor)
	return nil
}
