package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/download/{filename}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, name := range []string{"a.txt", "b.txt"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+name, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/download/{filename}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}

func TestFileOpAndUploaded(t *testing.T) {
	m := New()

	m.FileOp("upload", nil)
	m.FileOp("upload", errors.New("disk full"))
	m.FileOp("upload", nil)
	m.Uploaded(10)
	m.Uploaded(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fileOps.WithLabelValues("upload", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fileOps.WithLabelValues("upload", "error")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.uploadedBytes))
}

func TestHandler_ServesText(t *testing.T) {
	m := New()
	m.Uploaded(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fileshelf_uploaded_bytes_total 1")
}
