package progress

import (
	"fmt"
	"net/http"

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

func (h *Handler) AmbitionProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.AmbitionProgress(r.Context(), userID, id)
	if err != nil {
		httpx.Error(w, r, err, "compute ambition progress")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) ObjectiveProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.ObjectiveProgress(r.Context(), userID, id)
	if err != nil {
		httpx.Error(w, r, err, "compute objective progress")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) decodeValue(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var dto UpdateValueDTO
	if !httpx.Decode(w, r, &dto) {
		return 0, false
	}
	if dto.Value == nil {
		httpx.Error(w, r, fmt.Errorf("%w: value is required", goal.ErrInvalidInput), "update value")
		return 0, false
	}
	return *dto.Value, true
}

func (h *Handler) UpdateKeyResultValue(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	resp, err := h.service.UpdateKeyResultValue(r.Context(), userID, id, value)
	if err != nil {
		httpx.Error(w, r, err, "update key result value")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateQuarterlyKeyResultValue(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	resp, err := h.service.UpdateQuarterlyKeyResultValue(r.Context(), userID, id, value)
	if err != nil {
		httpx.Error(w, r, err, "update quarterly key result value")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		httpx.Error(w, r, err, "build dashboard")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}
