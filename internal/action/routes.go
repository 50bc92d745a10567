package action

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.CreateAction)
	r.Get("/", h.ListActions)
	r.Get("/orphans", h.ListOrphans)
	r.Get("/{id}", h.GetAction)
	r.Put("/{id}", h.UpdateAction)
	r.Patch("/{id}", h.UpdateAction)
	r.Delete("/{id}", h.DeleteAction)
	r.Post("/{id}/move", h.MoveAction)
	r.Post("/{id}/reposition", h.RepositionAction)

	return r
}
