package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/services"
	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form boundaries and headers on top of
// the largest accepted file.
const multipartOverhead = 1 << 20

func errBadRequestf(format string, args ...any) error {
	return errors.Join(errBadRequest, fmt.Errorf(format, args...))
}

func (h *Handler) uploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxFileSize+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.writeError(c, err)
			return
		}
		h.writeError(c, errBadRequestf("invalid file field: %v", err))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.writeError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	url, err := h.svc.UploadFile(c.Request.Context(), c.Param("id"), file, header.Filename,
		header.Header.Get("Content-Type"), header.Size, actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DownloadResponse{URL: url})
}

func (h *Handler) downloadFile(c *gin.Context) {
	url, err := h.svc.DownloadFile(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if boolParam(c, "redirect") {
		c.Redirect(http.StatusFound, url)
		return
	}
	c.JSON(http.StatusOK, models.DownloadResponse{URL: url})
}

func (h *Handler) deleteFile(c *gin.Context) {
	if err := h.svc.DeleteFile(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
