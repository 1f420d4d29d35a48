package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/deckray/internal/api"
)

// RulesService is the boundary the HTTP layer depends on for the rule corpus.
type RulesService interface {
	AddDocuments(ctx context.Context, docs []string, ids []int64) (int, error)
}

type RulesHandler struct {
	svc RulesService
}

func NewRulesHandler(svc RulesService) *RulesHandler {
	return &RulesHandler{svc: svc}
}

type AddDocumentsRequest struct {
	Documents []string `json:"documents"`
	IDs       []int64  `json:"ids,omitempty"`
}

type AddDocumentsResponse struct {
	Status string `json:"status"`
	Added  int    `json:"added"`
}

func (h *RulesHandler) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var req AddDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.svc.AddDocuments(r.Context(), req.Documents, req.IDs)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AddDocumentsResponse{Status: "ok", Added: added})
}
