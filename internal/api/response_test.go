package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloo-solutions/deckray/internal/domain"
)

func TestDomainErrorToHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", domain.ErrInvalidTopK, http.StatusBadRequest},
		{"ingestion", domain.ErrUnsupportedFormat, http.StatusUnprocessableEntity},
		{"not found", domain.ErrModelNotFound, http.StatusNotFound},
		{"not initialized", domain.ErrStoreNotInitialized, http.StatusServiceUnavailable},
		{"configuration", domain.ErrMissingDatabaseURL, http.StatusServiceUnavailable},
		{"internal", domain.NewDomainError(domain.ErrCodeInternalError, "boom"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, DomainErrorToHTTP(tc.err))
		})
	}
}

func TestHandleError_ExposesOnlyDomainMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "search failed", errors.New("dial tcp: secret host")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "search failed")
	assert.NotContains(t, rec.Body.String(), "secret host")
}

func TestHandleError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pgx: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusOK, map[string]int{"added": 2})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"added":2}}`, rec.Body.String())
}
