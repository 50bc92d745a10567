package trend

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	entityType, err := goal.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		httpx.Error(w, r, err, "analyze trend")
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.Analyze(r.Context(), userID, entityType, id)
	if err != nil {
		httpx.Error(w, r, err, "analyze trend")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}
