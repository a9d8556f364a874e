package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/fileshelf/internal/apperr"
	"github.com/vaughan-dsouza/fileshelf/internal/storage"
)

func TestFileError(t *testing.T) {
	tests := []struct {
		err  error
		kind apperr.Kind
	}{
		{fmt.Errorf("save: %w", storage.ErrInvalidName), apperr.KindValidation},
		{fmt.Errorf("open: %w", storage.ErrNotFound), apperr.KindNotFound},
		{fmt.Errorf("open: %w", storage.ErrIsDir), apperr.KindValidation},
		{errors.New("disk on fire"), apperr.KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, apperr.KindOf(fileError(tt.err)), tt.err.Error())
	}
}

func routed(t *testing.T, target, param string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("filename", param)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestFileName(t *testing.T) {
	name, err := fileName(routed(t, "/download/report.pdf", "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", name)

	// Path is already decoded, so a literal percent survives untouched.
	name, err = fileName(routed(t, "/download/100%25", "100%"))
	require.NoError(t, err)
	assert.Equal(t, "100%", name)

	// An escaped slash keeps RawPath set and the parameter escaped.
	name, err = fileName(routed(t, "/download/..%2Fsecret", "..%2Fsecret"))
	require.NoError(t, err)
	assert.Equal(t, "../secret", name)
	assert.ErrorIs(t, storage.ValidateName(name), storage.ErrInvalidName)
}
