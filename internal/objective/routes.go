package objective

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/key-results", h.CreateKeyResult)
	r.Get("/{id}/key-results", h.ListKeyResults)

	return r
}

func KeyResultRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Put("/{id}", h.UpdateKeyResult)
	r.Delete("/{id}", h.DeleteKeyResult)

	return r
}
