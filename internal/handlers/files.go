package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/vaughan-dsouza/fileshelf/internal/apperr"
	"github.com/vaughan-dsouza/fileshelf/internal/metrics"
	"github.com/vaughan-dsouza/fileshelf/internal/middleware"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
	"github.com/vaughan-dsouza/fileshelf/internal/storage"
	"github.com/vaughan-dsouza/fileshelf/internal/utils"
)

// UploadField is the multipart field carrying the uploaded file.
const UploadField = "document"

// multipart parts above this size spill to temp files
const uploadMemory = 32 << 20

type FileHandler struct {
	root      *storage.Root
	metrics   *metrics.Metrics
	log       *slog.Logger
	maxUpload int64
}

func NewFileHandler(root *storage.Root, m *metrics.Metrics, log *slog.Logger, maxUpload int64) *FileHandler {
	return &FileHandler{root: root, metrics: m, log: log, maxUpload: maxUpload}
}

type listResp struct {
	Files []models.FileEntry `json:"files"`
	Role  models.Role        `json:"role"`
}

// fileError maps storage failures onto the client-facing taxonomy.
func fileError(err error) error {
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		return apperr.Validation("invalid file name")
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("file not found")
	case errors.Is(err, storage.ErrIsDir):
		return apperr.Validation("is a directory")
	default:
		return apperr.Internal(err)
	}
}

// fileName returns the decoded {filename} parameter. chi matches on RawPath
// when the request carried escapes like %2F, and the parameter is then still
// escaped.
func fileName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name, nil
	}
	name, err := url.PathUnescape(name)
	if err != nil {
		return "", apperr.Validation("invalid file name")
	}
	return name, nil
}

// ---------------------- LIST ----------------------

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	files, err := h.root.List()
	h.metrics.FileOp("list", err)
	if err != nil {
		writeError(h.log, w, r, apperr.Internal(err))
		return
	}

	utils.JSON(w, http.StatusOK, listResp{Files: files, Role: id.Role})
}

// ---------------------- UPLOAD ----------------------

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(h.log, w, r, apperr.TooLarge("file too large"))
			return
		}
		writeError(h.log, w, r, apperr.Validation("no file uploaded"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	parts := r.MultipartForm.File[UploadField]
	switch len(parts) {
	case 0:
		writeError(h.log, w, r, apperr.Validation("no file uploaded"))
		return
	case 1:
	default:
		writeError(h.log, w, r, apperr.Validation("exactly one file per upload"))
		return
	}
	fh := parts[0]

	src, err := fh.Open()
	if err != nil {
		writeError(h.log, w, r, apperr.Internal(err))
		return
	}
	defer src.Close()

	n, err := h.root.Save(fh.Filename, src)
	h.metrics.FileOp("upload", err)
	if err != nil {
		writeError(h.log, w, r, fileError(err))
		return
	}
	h.metrics.Uploaded(n)

	id, _ := middleware.IdentityFrom(r.Context())
	h.log.InfoContext(r.Context(), "file uploaded", "name", fh.Filename, "bytes", n, "user_id", id.UserID)

	utils.JSON(w, http.StatusCreated, map[string]string{
		"message":  "file uploaded",
		"filename": fh.Filename,
	})
}

// ---------------------- DELETE ----------------------

// Delete is mounted behind RequireRole(admin).
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := fileName(r)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	err = h.root.Remove(name)
	h.metrics.FileOp("delete", err)
	if err != nil {
		writeError(h.log, w, r, fileError(err))
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	h.log.InfoContext(r.Context(), "file deleted", "name", name, "user_id", id.UserID)

	utils.JSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

// ---------------------- DOWNLOAD ----------------------

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	name, err := fileName(r)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	f, info, err := h.root.Open(name)
	h.metrics.FileOp("download", err)
	if err != nil {
		writeError(h.log, w, r, fileError(err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))

	// ServeContent handles Range and conditional requests.
	http.ServeContent(w, r, name, info.ModTime(), f)
}
