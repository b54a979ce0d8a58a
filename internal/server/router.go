// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/activity"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/auth"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/httpx"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/middleware"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Auth           *auth.Handler
	Activity       *activity.Handler
	Guard          *auth.Guard
	Logger         logging.Logger
	AllowedOrigins []string

	// TrustProxyHeaders enables chi's RealIP, which rewrites the remote
	// address from client-supplied forwarding headers.
	TrustProxyHeaders bool
}

// NewRouter constructs the chi router with routes wired.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	authenticated := middleware.Authenticate(d.Guard, d.Logger)
	admin := middleware.RequireRole(models.RoleAdmin)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public
	r.Post("/register", d.Auth.Register)
	r.Post("/login", d.Auth.Login)
	r.Post("/collect-log", d.Activity.Collect)

	// Authenticated
	r.With(authenticated).Get("/profile", d.Auth.Profile)

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(authenticated, admin)
		r.Get("/admin/dashboard", d.Auth.AdminDashboard)
		r.Get("/logs", d.Activity.List)
		if d.Activity.CanArchive() {
			r.Post("/admin/logs/archive", d.Activity.Archive)
		}
	})

	return r
}
