package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cardpile-backend/internal/handlers"
	"cardpile-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	deckHandler *handlers.DeckHandler,
	studyHandler *handlers.StudyHandler,
	settingsHandler *handlers.SettingsHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Deck Routes ────
		r.Route("/decks", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", deckHandler.List)
			r.Post("/", deckHandler.Create)
			r.Post("/import", deckHandler.Import)
			r.Get("/{id}", deckHandler.Get)
			r.Delete("/{id}", deckHandler.Delete)
			r.Get("/{id}/export", deckHandler.Export)
		})

		// ──── Study Session Routes ────
		r.Route("/study", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", studyHandler.Start)
			r.Get("/", studyHandler.State)
			r.Post("/flip", studyHandler.Flip)
			r.Post("/next", studyHandler.Next)
			r.Post("/prev", studyHandler.Prev)
			r.Post("/pile", studyHandler.SwitchPile)
			r.Post("/move", studyHandler.Move)
			r.Post("/pointer/down", studyHandler.PointerDown)
			r.Post("/pointer/move", studyHandler.PointerMove)
			r.Post("/pointer/up", studyHandler.PointerUp)
			r.Post("/reset", studyHandler.Reset)
			r.Get("/grid", studyHandler.Grid)
			r.Post("/grid/flip", studyHandler.GridFlip)
			r.Post("/select", studyHandler.Select)
			r.Post("/finish", studyHandler.Finish)
		})

		// ──── Settings Routes ────
		r.Route("/settings", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})
	})

	return r
}
