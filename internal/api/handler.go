// Package api exposes the document services over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/services"
	"github.com/gin-gonic/gin"
)

// ActorHeader names the caller on audit fields. Authentication happens
// upstream of this handler.
const ActorHeader = "X-Actor"

const defaultActor = "system"

// Handler routes document requests onto a DocumentService.
type Handler struct {
	svc    *services.DocumentService
	logger *slog.Logger
	engine *gin.Engine
}

// NewHandler builds the routing table. A nil logger uses slog.Default.
func NewHandler(svc *services.DocumentService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: svc, logger: logger}

	engine := gin.New()
	engine.MaxMultipartMemory = multipartOverhead
	engine.Use(gin.Recovery(), h.requestLogger())
	h.registerRoutes(engine)
	h.engine = engine
	return h
}

func (h *Handler) registerRoutes(r *gin.Engine) {
	r.GET("/codes/:type", h.generateCode)

	docs := r.Group("/documents")
	{
		docs.POST("", h.create)
		docs.GET("", h.list)
		docs.GET("/search", h.search)
		docs.GET("/stats", h.stats)
		docs.GET("/expiring", h.expiring)
		docs.GET("/expired", h.expired)
		docs.GET("/most-downloaded", h.mostDownloaded)
		docs.GET("/recent", h.recent)

		docs.GET("/:id", h.get)
		docs.PATCH("/:id", h.update)
		docs.DELETE("/:id", h.delete)
		docs.POST("/:id/status", h.changeStatus)
		docs.POST("/:id/approve", h.approve)
		docs.POST("/:id/publish", h.publish)
		docs.POST("/:id/obsolete", h.obsolete)
		docs.POST("/:id/archive", h.archive)

		docs.GET("/:id/versions", h.versionHistory)
		docs.POST("/:id/versions", h.createVersion)
		docs.GET("/:id/versions/:versionId", h.getVersion)
		docs.POST("/:id/versions/:versionId/restore", h.restoreVersion)

		docs.PUT("/:id/file", h.uploadFile)
		docs.GET("/:id/file", h.downloadFile)
		docs.DELETE("/:id/file", h.deleteFile)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.ServeHTTP(w, r)
}

// requestLogger logs one line per request, at a level that follows the
// response status.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"actor", actor(c),
			"latency", time.Since(start),
		}
		switch {
		case status >= http.StatusInternalServerError:
			h.logger.Error("Server error", attrs...)
		case status >= http.StatusBadRequest:
			h.logger.Warn("Client error", attrs...)
		default:
			h.logger.Debug("Request served", attrs...)
		}
	}
}

func actor(c *gin.Context) string {
	if a := strings.TrimSpace(c.GetHeader(ActorHeader)); a != "" {
		return a
	}
	return defaultActor
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrVersionNotFound),
		errors.Is(err, services.ErrAttachmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidDocument),
		errors.Is(err, services.ErrChangeReasonRequired),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

// intParam reads a non-negative integer query parameter.
func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Join(errBadRequest, errors.New(name+" must be a non-negative integer"))
	}
	return n, nil
}

func boolParam(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}

func filterFrom(c *gin.Context) (models.Filter, error) {
	f := models.Filter{
		Status:          models.Status(c.Query("status")),
		Process:         c.Query("process"),
		NormPoint:       c.Query("normPoint"),
		IncludeArchived: boolParam(c, "includeArchived"),
	}
	if raw := c.Query("type"); raw != "" {
		t, err := models.ParseDocumentType(raw)
		if err != nil {
			return f, errors.Join(errBadRequest, err)
		}
		f.Type = t
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, errors.Join(errBadRequest, errors.New("unknown status "+string(f.Status)))
	}
	return f, nil
}
