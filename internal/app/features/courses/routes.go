// internal/app/features/courses/routes.go
package courses

import (
	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/domain/models"
)

// Routes returns the subrouter mounted under /courses.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList) // open, unscoped

	r.Group(func(gr chi.Router) {
		gr.Use(auth.RequireSignedIn)
		gr.Get("/{courseID}", h.HandleGet)
		gr.Delete("/{courseID}", h.HandleDelete)
		gr.Get("/{courseID}/lectures", h.HandleListLectures)
		gr.Get("/{courseID}/lectures/{lectureID}/attachments/{filename}", h.HandleDownloadAttachment)
	})

	r.Group(func(gr chi.Router) {
		gr.Use(auth.RequireCapability(models.CapCourseAdmin))
		gr.Post("/", h.HandleCreate)
		gr.Put("/{courseID}", h.HandleUpdate)
		gr.Post("/{courseID}/lectures", h.HandleAddLecture)
		gr.Put("/{courseID}/lectures/{lectureID}", h.HandleUpdateLecture)
		gr.Delete("/{courseID}/lectures/{lectureID}", h.HandleDeleteLecture)
		gr.Post("/{courseID}/lectures/{lectureID}/attachments", h.HandleAddAttachment)
		gr.Delete("/{courseID}/lectures/{lectureID}/attachments/{filename}", h.HandleDeleteAttachment)
	})

	return r
}
