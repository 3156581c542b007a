// internal/app/features/orders/routes.go
package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the subrouter mounted under /orders. Every order
// endpoint requires a signed-in principal; scoping beyond that is done
// with query filters, not route guards.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandlePlace)
	r.Get("/", h.HandleList)
	r.Get("/{orderID}", h.HandleGet)
	r.Delete("/{orderID}", h.HandleDelete)
	r.Put("/{orderID}/payment", h.HandlePayment)

	return r
}
