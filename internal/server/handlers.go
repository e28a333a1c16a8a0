package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ManojkumarBalini/screenrec/internal/response"
)

// handlers binds HTTP handler methods to an App's dependencies.
type handlers struct {
	app *App
}

// --- Health endpoints ---

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ready := true
	checks := make(map[string]interface{})

	if err := h.app.DB.Ping(); err != nil {
		ready = false
		checks["database"] = map[string]string{"status": "unhealthy", "error": err.Error()}
	} else {
		checks["database"] = map[string]string{"status": "healthy"}
	}

	if ready {
		checks["status"] = "ready"
		response.JSON(w, http.StatusOK, checks)
	} else {
		checks["status"] = "not_ready"
		response.JSON(w, http.StatusServiceUnavailable, checks)
	}
}

// handleDiagnostics serves a support bundle. With "Accept: application/gzip"
// the bundle is streamed as a tar.gz attachment; otherwise it is returned as
// plain JSON.
func (h *handlers) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if r.Header.Get("Accept") == "application/gzip" {
		w.Header().Set("Content-Type", "application/gzip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=diagnostics-%s.tar.gz", time.Now().UTC().Format("20060102-150405")))
		if err := h.app.DiagCollector.WriteTarGz(r.Context(), w); err != nil {
			slog.Error("failed to generate diagnostics archive", "error", err)
			response.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	bundle, err := h.app.DiagCollector.Collect(r.Context())
	if err != nil {
		slog.Error("failed to collect diagnostics", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, bundle)
}
