// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/domain/models"
)

// Register mounts the user endpoints on the parent router. The feature
// spans several top-level paths (/users, /students, /teachers, /admins)
// so it registers routes rather than returning one subrouter.
func Register(r chi.Router, h *Handler) {
	r.Route("/users", func(ur chi.Router) {
		ur.With(auth.RequireCapability(models.CapUserAdmin)).Get("/", h.HandleList)

		// Open password reset by username; applies the password field
		// only, everything else in the body is ignored.
		ur.Put("/{username}", h.HandlePasswordReset)
	})

	r.Route("/students", func(sr chi.Router) {
		sr.Post("/", h.HandleCreateStudent) // open registration

		sr.Group(func(gr chi.Router) {
			gr.Use(auth.RequireSignedIn)
			gr.Get("/{username}", h.HandleGetStudent)
			gr.Put("/{username}", h.HandleUpdateStudent)
			gr.Delete("/{username}", h.HandleDeleteStudent)
		})
	})

	r.With(auth.RequireCapability(models.CapSysOwner)).
		Post("/teachers", h.HandleCreateTeacher)

	r.Route("/admins", func(ar chi.Router) {
		ar.Use(auth.RequireCapability(models.CapSysOwner))
		ar.Post("/", h.HandleCreateAdmin)
		ar.Get("/{username}", h.HandleGetAdmin)
		ar.Put("/{username}", h.HandleUpdateAdmin)
		ar.Delete("/{username}", h.HandleDeleteAdmin)
	})
}
