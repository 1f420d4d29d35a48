package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/deckray/internal/api"
	"github.com/cloo-solutions/deckray/internal/domain"
)

// ModelHandler serves the fixed reasoning-model catalog.
type ModelHandler struct{}

func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, domain.ListModels())
}

func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "model id must be an integer")
		return
	}

	model, err := domain.GetModel(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, model)
}
