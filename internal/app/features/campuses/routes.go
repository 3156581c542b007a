// internal/app/features/campuses/routes.go
package campuses

import (
	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/domain/models"
)

// Routes returns the subrouter mounted under /campus.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)

	r.Group(func(gr chi.Router) {
		gr.Use(auth.RequireCapability(models.CapCampusAdmin))
		gr.Post("/", h.HandleCreate)
	})

	return r
}
