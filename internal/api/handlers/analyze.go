package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/deckray/internal/api"
	"github.com/cloo-solutions/deckray/internal/service"
)

// AnalyzeService is the boundary the HTTP layer depends on for deck analysis.
type AnalyzeService interface {
	AnalyzeStructure(ctx context.Context, document []byte, filename string, opts service.StructureOptions) (*service.StructureResult, error)
	AnalyzeContent(ctx context.Context, document []byte, filename string, includeFirst, includeLast bool) (*service.ContentResult, error)
	AnalyzeVisual(ctx context.Context, document []byte, filename string) (*service.VisualResult, error)
}

type AnalyzeHandler struct {
	svc AnalyzeService
}

func NewAnalyzeHandler(svc AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

const maxUploadBytes = 50 * 1024 * 1024

// readUpload pulls the uploaded document out of the multipart form. The
// form's temp files are released when the request finishes.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, "", false
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file field is required")
		return nil, "", false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return nil, "", false
	}

	return content, header.Filename, true
}

func formBool(r *http.Request, key string, fallback bool) bool {
	value := r.FormValue(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func formInt(r *http.Request, key string, fallback int) int {
	value := r.FormValue(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func formFloat(r *http.Request, key string, fallback float64) float64 {
	value := r.FormValue(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func (h *AnalyzeHandler) Structure(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := readUpload(w, r)
	if !ok {
		return
	}

	opts := service.StructureOptions{
		ModelID:      formInt(r, "model_id", 0),
		UseRAG:       formBool(r, "use_rag", false),
		UserContext:  r.FormValue("user_context"),
		IncludeFirst: formBool(r, "include_first_slide", true),
		IncludeLast:  formBool(r, "include_last_slide", true),
		MaxTokens:    formInt(r, "max_tokens", 0),
		Temperature:  float32(formFloat(r, "temperature", 0)),
	}

	result, err := h.svc.AnalyzeStructure(r.Context(), content, filename, opts)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

func (h *AnalyzeHandler) Content(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := readUpload(w, r)
	if !ok {
		return
	}

	includeFirst := formBool(r, "include_first_slide", true)
	includeLast := formBool(r, "include_last_slide", true)

	result, err := h.svc.AnalyzeContent(r.Context(), content, filename, includeFirst, includeLast)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

func (h *AnalyzeHandler) Visual(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.svc.AnalyzeVisual(r.Context(), content, filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}
