package journals

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/journals", h.List)
	r.Post("/journals", h.Create)
	r.Get("/journals/{id}", h.Get)
	r.Delete("/journals/{id}", h.Delete)
}
