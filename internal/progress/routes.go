package progress

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the progress endpoints, which live under the ambition,
// objective and key result paths, to an authenticated router.
func Register(r chi.Router, h *Handler) {
	r.Get("/ambitions/{id}/progress", h.AmbitionProgress)
	r.Get("/objectives/{id}/progress", h.ObjectiveProgress)
	r.Put("/key-results/{id}/value", h.UpdateKeyResultValue)
	r.Put("/quarterly-key-results/{id}/value", h.UpdateQuarterlyKeyResultValue)
	r.Get("/dashboard", h.Dashboard)
}
