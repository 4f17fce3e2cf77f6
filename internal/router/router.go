package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rianxlewis/routine-builder/internal/gateway"
	"github.com/rianxlewis/routine-builder/internal/handlers"
	"github.com/rianxlewis/routine-builder/internal/middleware"
)

func New(
	gatewayHandler *gateway.Handler,
	productHandler *handlers.ProductHandler,
	sessionHandler *handlers.SessionHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Proxy gateway at the server root. It manages its own method routing
	// (POST/OPTIONS/405) and CORS headers per the wire contract.
	r.Handle("/", gatewayHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS)

		// ──── Product Catalog Routes ────
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})
		r.Get("/categories", productHandler.Categories)

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)

				r.Route("/selection", func(r chi.Router) {
					r.Get("/", sessionHandler.GetSelection)
					r.Post("/toggle", sessionHandler.ToggleSelection)
					r.Delete("/", sessionHandler.ClearSelection)
				})

				r.Get("/preferences", sessionHandler.GetPreferences)
				r.Put("/preferences", sessionHandler.UpdatePreferences)

				r.Post("/routine", sessionHandler.GenerateRoutine)
				r.Post("/chat", sessionHandler.Chat)
			})
		})
	})

	return r
}
