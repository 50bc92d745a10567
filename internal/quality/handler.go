package quality

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

func (h *Handler) SMART(w http.ResponseWriter, r *http.Request) {
	var req SMARTRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	config.JSON(w, http.StatusOK, h.service.SMART(req))
}

func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	var req StatementRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	config.JSON(w, http.StatusOK, h.service.Statement(req))
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	config.JSON(w, http.StatusOK, h.service.Review(r.Context(), req))
}
