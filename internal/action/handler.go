package action

import (
	"net/http"

	"github.com/google/uuid"

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

func (h *Handler) CreateAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	var dto CreateActionDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	a, created, err := h.service.Create(r.Context(), userID, dto)
	if err != nil {
		httpx.Error(w, r, err, "create action")
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	config.JSON(w, status, a)
}

func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var f ListFilter
	q := r.URL.Query()
	if v := q.Get("board_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid board_id", http.StatusBadRequest)
			return
		}
		f.BoardID = &id
	}
	if v := q.Get("status"); v != "" {
		st, err := goal.ParseActionStatus(v)
		if err != nil {
			httpx.Error(w, r, err, "list actions")
			return
		}
		f.Status = &st
	}

	actions, err := h.service.List(r.Context(), userID, f)
	if err != nil {
		httpx.Error(w, r, err, "list actions")
		return
	}
	if actions == nil {
		actions = []goal.Action{}
	}
	config.JSON(w, http.StatusOK, actions)
}

func (h *Handler) GetAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		httpx.Error(w, r, err, "get action")
		return
	}
	config.JSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateActionDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	a, err := h.service.Update(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "update action")
		return
	}
	config.JSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		httpx.Error(w, r, err, "delete action")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto MoveActionDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	a, err := h.service.Move(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "move action")
		return
	}
	config.JSON(w, http.StatusOK, a)
}

func (h *Handler) RepositionAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto RepositionActionDTO
	if !httpx.Decode(w, r, &dto) {
		return
	}

	a, err := h.service.Reposition(r.Context(), userID, id, dto)
	if err != nil {
		httpx.Error(w, r, err, "reposition action")
		return
	}
	config.JSON(w, http.StatusOK, a)
}

func (h *Handler) ListOrphans(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Orphans(r.Context(), userID)
	if err != nil {
		httpx.Error(w, r, err, "list orphaned actions")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}
	boardID, ok := httpx.PathID(w, r, "boardId")
	if !ok {
		return
	}

	resp, err := h.service.Board(r.Context(), userID, boardID)
	if err != nil {
		httpx.Error(w, r, err, "load board")
		return
	}
	config.JSON(w, http.StatusOK, resp)
}
