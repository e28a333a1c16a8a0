package recordings

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ManojkumarBalini/screenrec/internal/config"
	"github.com/ManojkumarBalini/screenrec/internal/db"
	"github.com/ManojkumarBalini/screenrec/internal/response"
)

const (
	// maxFormMemory bounds the in-memory portion of multipart parsing;
	// larger bodies spill to temp files.
	maxFormMemory = 32 << 20

	// uploadSlack covers multipart framing overhead so a file of exactly
	// the configured maximum still fits in the request body.
	uploadSlack = 1 << 20

	containerMIME = "video/webm"
	recordingExt  = ".webm"
)

// Handler handles recording HTTP requests.
type Handler struct {
	database *db.DB
	store    RecordingStore
	config   *config.Config
}

// NewHandler creates a new recording handler.
func NewHandler(database *db.DB, store RecordingStore, cfg *config.Config) *Handler {
	return &Handler{
		database: database,
		store:    store,
		config:   cfg,
	}
}

// ServeHTTP routes recording requests.
// Expected paths:
//   - POST   /api/recordings
//   - GET    /api/recordings
//   - GET    /api/recordings/{id}
//   - GET    /api/recordings/{id}/download
//   - DELETE /api/recordings/{id}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/api/recordings" {
		switch r.Method {
		case http.MethodPost:
			h.handleUpload(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if remainder, ok := strings.CutPrefix(path, "/api/recordings/"); ok {
		parts := strings.SplitN(remainder, "/", 2)
		action := ""
		if len(parts) > 1 {
			action = parts[1]
		}

		// A non-numeric identifier can never match a recording.
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			response.Error(w, http.StatusNotFound, "Recording not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			h.handleStream(w, r, id)
		case action == "download" && r.Method == http.MethodGet:
			h.handleDownload(w, r, id)
		case action == "" && r.Method == http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			response.Error(w, http.StatusNotFound, "Not found")
		}
		return
	}

	response.Error(w, http.StatusNotFound, "Not found")
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.config.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+uploadSlack)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if strings.Contains(err.Error(), "http: request body too large") {
			response.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (max %d bytes)", maxSize))
			return
		}
		response.Error(w, http.StatusBadRequest, "Failed to parse upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		response.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	if header.Size > maxSize {
		response.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (max %d bytes)", maxSize))
		return
	}

	// Invalid duration values are treated as absent rather than rejected.
	var duration int64
	if v := r.FormValue("duration"); v != "" {
		if d, perr := strconv.ParseInt(v, 10, 64); perr == nil && d >= 0 {
			duration = d
		}
	}

	filename := fmt.Sprintf("recording-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), recordingExt)

	storagePath, err := h.store.Save(filename, file)
	if err != nil {
		slog.Error("failed to save recording file", "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to save recording")
		return
	}

	rec := db.Recording{
		Filename:  filename,
		Filepath:  storagePath,
		Filesize:  header.Size,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.database.CreateRecording(&rec); err != nil {
		// The stored file is left behind; the reconciliation sweep picks it up.
		slog.Error("failed to insert recording", "error", err, "path", storagePath)
		response.Error(w, http.StatusInternalServerError, "Failed to save recording")
		return
	}

	slog.Info("recording uploaded", "id", rec.ID, "filename", filename, "size", header.Size)

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Recording uploaded successfully",
		"recording": rec,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.database.ListRecordings()
	if err != nil {
		slog.Error("failed to list recordings", "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}

	if recs == nil {
		recs = []db.Recording{}
	}

	response.JSON(w, http.StatusOK, recs)
}

// lookup resolves a recording row and verifies its file still exists.
// The file check is authoritative: a row whose file has vanished is reported
// as not found. On failure the error response has already been written.
func (h *Handler) lookup(w http.ResponseWriter, id int64) (*db.Recording, int64, bool) {
	rec, err := h.database.GetRecording(id)
	if err != nil {
		slog.Error("failed to get recording", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return nil, 0, false
	}
	if rec == nil {
		response.Error(w, http.StatusNotFound, "Recording not found")
		return nil, 0, false
	}

	size, err := h.store.Stat(rec.Filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.Error(w, http.StatusNotFound, "Recording not found")
			return nil, 0, false
		}
		slog.Error("failed to stat recording file", "error", err, "path", rec.Filepath)
		response.Error(w, http.StatusInternalServerError, "Failed to read recording")
		return nil, 0, false
	}

	return rec, size, true
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request, id int64) {
	rec, size, ok := h.lookup(w, id)
	if !ok {
		return
	}

	w.Header().Set("Accept-Ranges", "bytes")

	start, end, hasRange, err := parseByteRange(r.Header.Get("Range"), size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		response.Error(w, http.StatusRequestedRangeNotSatisfiable, "Range not satisfiable")
		return
	}
	if !hasRange {
		start, end = 0, size-1
	}

	reader, err := h.store.Get(rec.Filepath, start, end)
	if err != nil {
		slog.Error("failed to open recording file", "error", err, "path", rec.Filepath)
		response.Error(w, http.StatusInternalServerError, "Failed to read recording")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", containerMIME)
	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	if hasRange {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
		w.WriteHeader(http.StatusPartialContent)
	}
	io.Copy(w, reader)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request, id int64) {
	rec, size, ok := h.lookup(w, id)
	if !ok {
		return
	}

	reader, err := h.store.Get(rec.Filepath, 0, size-1)
	if err != nil {
		slog.Error("failed to open recording file", "error", err, "path", rec.Filepath)
		response.Error(w, http.StatusInternalServerError, "Failed to read recording")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	w.Header().Set("Content-Type", containerMIME)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	io.Copy(w, reader)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	rec, err := h.database.GetRecording(id)
	if err != nil {
		slog.Error("failed to get recording", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rec == nil {
		response.Error(w, http.StatusNotFound, "Recording not found")
		return
	}

	// File removal comes first: if it fails the row survives and the delete
	// can be retried. A missing file is tolerated by the store.
	if err := h.store.Delete(rec.Filepath); err != nil {
		slog.Error("failed to delete recording file", "error", err, "path", rec.Filepath)
		response.Error(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}

	if err := h.database.DeleteRecording(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "Recording not found")
			return
		}
		slog.Error("failed to delete recording", "error", err, "id", id)
		response.Error(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}

	slog.Info("recording deleted", "id", id)

	response.JSON(w, http.StatusOK, map[string]string{"message": "Recording deleted successfully"})
}

// parseByteRange parses a Range header of the form "bytes=a-b" against the
// given total size. Both offsets in the returned span are inclusive; an
// omitted end means "through the last byte" and an end past the file is
// clamped. hasRange is false when the header is absent or not in a form this
// server serves partially (suffix ranges, multiple ranges, malformed values),
// in which case the caller should respond with the full representation.
// A well-formed range whose start lies beyond the end of the file yields
// errUnsatisfiableRange.
func parseByteRange(header string, size int64) (start, end int64, hasRange bool, err error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return 0, 0, false, nil
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return 0, 0, false, nil
	}

	start, perr := strconv.ParseInt(startStr, 10, 64)
	if perr != nil || start < 0 {
		return 0, 0, false, nil
	}
	if start >= size {
		return 0, 0, false, errUnsatisfiableRange
	}

	end = size - 1
	if endStr != "" {
		end, perr = strconv.ParseInt(endStr, 10, 64)
		if perr != nil || end < start {
			return 0, 0, false, nil
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return start, end, true, nil
}

var errUnsatisfiableRange = errors.New("requested range not satisfiable")
