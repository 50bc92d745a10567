package ambition

import (
	"net/http"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	var dto CreateAmbitionDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, created, err := h.service.Create(r.Context(), userID, dto)
	if err != nil {
		httpx.Error(w, r, err, "create ambition")
		return
	}
	config.JSON(w, createdStatus(created), resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.List(r.Context(), userID)
	if err != nil {
		httpx.Error(w, r, err, "list ambitions")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		httpx.Error(w, r, err, "get ambition")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateAmbitionDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, err := h.service.Update(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "update ambition")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		httpx.Error(w, r, err, "delete ambition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateKeyResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	ambitionID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto CreateKeyResultDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, created, err := h.service.CreateKeyResult(r.Context(), userID, ambitionID, dto)
	if err != nil {
		httpx.Error(w, r, err, "create key result")
		return
	}
	config.JSON(w, createdStatus(created), resp)
}

func (h *Handler) ListKeyResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	ambitionID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.ListKeyResults(r.Context(), userID, ambitionID)
	if err != nil {
		httpx.Error(w, r, err, "list key results")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateKeyResultDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, err := h.service.UpdateKeyResult(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "update key result")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteKeyResult(r.Context(), userID, id); err != nil {
		httpx.Error(w, r, err, "delete key result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
