package handlers

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/fileshelf/internal/apperr"
	"github.com/vaughan-dsouza/fileshelf/internal/metrics"
	"github.com/vaughan-dsouza/fileshelf/internal/storage"
	"github.com/vaughan-dsouza/fileshelf/internal/utils"
)

type Handler struct {
	Auth  *AuthHandler
	Files *FileHandler
}

func NewHandler(svc Authenticator, root *storage.Root, m *metrics.Metrics, log *slog.Logger, maxUpload int64) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(svc, log),
		Files: NewFileHandler(root, m, log, maxUpload),
	}
}

// writeError logs internal failures with the request id and writes the
// client-safe form of err.
func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"err", err,
		)
	}
	utils.Error(w, err)
}
