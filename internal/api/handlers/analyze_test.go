package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/deckray/internal/domain"
	"github.com/cloo-solutions/deckray/internal/service"
)

type mockAnalyzeService struct {
	mock.Mock
}

func (m *mockAnalyzeService) AnalyzeStructure(ctx context.Context, document []byte, filename string, opts service.StructureOptions) (*service.StructureResult, error) {
	args := m.Called(ctx, document, filename, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StructureResult), args.Error(1)
}

func (m *mockAnalyzeService) AnalyzeContent(ctx context.Context, document []byte, filename string, includeFirst, includeLast bool) (*service.ContentResult, error) {
	args := m.Called(ctx, document, filename, includeFirst, includeLast)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContentResult), args.Error(1)
}

func (m *mockAnalyzeService) AnalyzeVisual(ctx context.Context, document []byte, filename string) (*service.VisualResult, error) {
	args := m.Called(ctx, document, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VisualResult), args.Error(1)
}

// multipartUpload builds a request body with a file part and the given
// extra form fields.
func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestStructure_ParsesFormOptions(t *testing.T) {
	svc := &mockAnalyzeService{}
	svc.On("AnalyzeStructure", mock.Anything, []byte("pdf bytes"), "deck.pdf", service.StructureOptions{
		ModelID:      2,
		UseRAG:       true,
		UserContext:  "board pitch",
		IncludeFirst: false,
		IncludeLast:  true,
		MaxTokens:    500,
		Temperature:  0.3,
	}).Return(&service.StructureResult{Filename: "deck.pdf", TotalSlides: 3}, nil)

	body, contentType := multipartUpload(t, "deck.pdf", []byte("pdf bytes"), map[string]string{
		"model_id":            "2",
		"use_rag":             "true",
		"user_context":        "board pitch",
		"include_first_slide": "false",
		"max_tokens":          "500",
		"temperature":         "0.3",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze/structure", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	NewAnalyzeHandler(svc).Structure(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_slides":3`)
	svc.AssertExpectations(t)
}

func TestStructure_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("use_rag", "true"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze/structure", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	NewAnalyzeHandler(&mockAnalyzeService{}).Structure(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file field is required")
}

func TestStructure_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze/structure", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	NewAnalyzeHandler(&mockAnalyzeService{}).Structure(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStructure_DomainErrorMapped(t *testing.T) {
	svc := &mockAnalyzeService{}
	svc.On("AnalyzeStructure", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrUnsupportedFormat)

	body, contentType := multipartUpload(t, "deck.txt", []byte("not a pdf"), nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze/structure", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	NewAnalyzeHandler(svc).Structure(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported document format")
}

func TestContent_DefaultsIncludeFlags(t *testing.T) {
	svc := &mockAnalyzeService{}
	svc.On("AnalyzeContent", mock.Anything, []byte("pdf"), "deck.pdf", true, true).
		Return(&service.ContentResult{Filename: "deck.pdf"}, nil)

	body, contentType := multipartUpload(t, "deck.pdf", []byte("pdf"), nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze/content", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	NewAnalyzeHandler(svc).Content(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestVisual(t *testing.T) {
	svc := &mockAnalyzeService{}
	svc.On("AnalyzeVisual", mock.Anything, []byte("pdf"), "deck.pdf").
		Return(&service.VisualResult{Filename: "deck.pdf", TotalSlides: 5, VisualReport: domain.FallbackVisualReport()}, nil)

	body, contentType := multipartUpload(t, "deck.pdf", []byte("pdf"), nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze/visual", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	NewAnalyzeHandler(svc).Visual(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_slides":5`)
}
