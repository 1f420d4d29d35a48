package admin

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloo-solutions/deckray/internal/api/handlers"
)

func TestNoOpRulesService_ReportsConfigurationFailure(t *testing.T) {
	body := bytes.NewBufferString(`{"documents": ["one idea per slide"]}`)
	req := httptest.NewRequest(http.MethodPost, "/rules/documents", body)
	rec := httptest.NewRecorder()

	handlers.NewRulesHandler(&NoOpRulesService{}).AddDocuments(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "rules service not configured")
	assert.NotContains(t, rec.Body.String(), "internal error")
}
