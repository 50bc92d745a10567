package quality

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/smart", h.SMART)
	r.Post("/statement", h.Statement)
	r.Post("/review", h.Review)

	return r
}
