package objective

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
	var dto CreateObjectiveDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, created, err := h.service.Create(r.Context(), userID, dto)
	if err != nil {
		httpx.Error(w, r, err, "create objective")
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
		httpx.Error(w, r, err, "list objectives")
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
		httpx.Error(w, r, err, "get objective")
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
	var dto UpdateObjectiveDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, err := h.service.Update(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "update objective")
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
		httpx.Error(w, r, err, "delete objective")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateKeyResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	objectiveID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto CreateQuarterlyKeyResultDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, created, err := h.service.CreateKeyResult(r.Context(), userID, objectiveID, dto)
	if err != nil {
		httpx.Error(w, r, err, "create quarterly key result")
		return
	}
	config.JSON(w, createdStatus(created), resp)
}

func (h *Handler) ListKeyResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	objectiveID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.ListKeyResults(r.Context(), userID, objectiveID)
	if err != nil {
		httpx.Error(w, r, err, "list quarterly key results")
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
	var dto UpdateQuarterlyKeyResultDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	resp, err := h.service.UpdateKeyResult(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "update quarterly key result")
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
		httpx.Error(w, r, err, "delete quarterly key result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
