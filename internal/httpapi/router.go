package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/stock/{productId}", h.GetAvailability)

		r.Route("/cart/{userId}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{productId}", h.UpdateItem)
			r.Delete("/items/{productId}", h.RemoveItem)
			r.Post("/promo", h.ApplyPromo)
			r.Post("/checkout", h.Checkout)
		})

		r.Get("/orders/{userId}", h.ListOrders)
	})

	return r
}
