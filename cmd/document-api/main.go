package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/qualitydocs/internal/api"
	"github.com/Lllllllleong/qualitydocs/internal/services"
	"github.com/gin-gonic/gin"
)

var (
	handler *api.Handler
	once    sync.Once
	initErr error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	functions.HTTP("HandleDocuments", handleDocuments)
}

// main is required by the Go Functions Framework.
func main() {}

// handleDocuments is the Cloud Function entry point.
func handleDocuments(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		var svc *services.DocumentService
		svc, initErr = services.NewDocumentServiceFromEnv(context.Background())
		if initErr == nil {
			handler = api.NewHandler(svc, slog.Default())
		}
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	handler.ServeHTTP(w, r)
}
