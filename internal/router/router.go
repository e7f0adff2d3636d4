// Package router sets up all HTTP routes and middleware chains for the
// mailcanvas server. It organizes routes into the persistence API, the
// editor session API, the editor pages and the ops endpoints.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gorillaHandlers "github.com/gorilla/handlers"

	"mailcanvas/internal/handlers"
	"mailcanvas/internal/middleware"
)

// HealthCheck is one dependency probed by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps holds everything the router mounts.
type Deps struct {
	API    *handlers.API
	Editor *handlers.Editor
	Pages  *handlers.Pages

	// WriteLimiter throttles uploads and saves per client. Optional.
	WriteLimiter *middleware.RateLimiter
	// Metrics serves /metrics. Optional.
	Metrics http.Handler

	HealthChecks []HealthCheck
	CORSOrigins  []string
}

// New creates the configured router with all middleware and route groups
// wired up, wrapped in the CORS handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	limited := func(next http.Handler) http.Handler { return next }
	if d.WriteLimiter != nil {
		limited = d.WriteLimiter.Middleware
	}

	r.Get("/health", healthHandler(d.HealthChecks))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/editor", http.StatusFound)
	})

	// Editor pages.
	r.Route("/editor", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Get("/", d.Pages.Catalog)
		r.Get("/{id}/preview", d.Pages.Preview)
		r.Get("/{id}/code", d.Pages.Code)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)

		// Persistence endpoints.
		r.Get("/getEmailLayout", d.API.GetEmailLayout)
		r.With(limited).Post("/uploadImage", d.API.UploadImage)
		r.With(limited).Post("/uploadEmailConfig", d.API.UploadEmailConfig)
		r.Get("/renderAndDownloadTemplate/{id}", d.API.RenderAndDownloadTemplate)
		r.Get("/templates", d.API.ListTemplates)
		r.With(limited).Delete("/templates/{id}", d.API.DeleteTemplate)
		r.Get("/templates/{id}/download", d.API.DownloadTemplate)

		// Editor sessions.
		r.Route("/editor", func(r chi.Router) {
			ed := d.Editor
			r.Get("/catalog", ed.Catalog)
			r.Post("/sessions", ed.CreateSession)
			r.Get("/sessions/current", ed.Current)

			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", ed.State)
				r.Delete("/", ed.Discard)
				r.Patch("/meta", ed.SetMeta)

				r.Post("/titles", ed.AddTitle)
				r.Post("/contents", ed.AddContent)
				r.Post("/images", ed.AddImageURL)
				r.Post("/images/file", ed.AddImageFile)
				r.With(limited).Post("/images/upload", ed.UploadImage)
				r.Post("/drop", ed.Drop)

				r.Post("/pointer/down", ed.PointerDown)
				r.Post("/pointer/move", ed.PointerMove)
				r.Post("/pointer/up", ed.PointerUp)

				r.Put("/elements/{elementID}/text", ed.CommitText)
				r.Delete("/elements/{elementID}", ed.DeleteElement)
				r.Put("/selection", ed.Select)
				r.Delete("/selection", ed.ClearSelection)
				r.Post("/delete-selected", ed.DeleteSelected)

				r.Patch("/styles", ed.UpdateStyles)
				r.Put("/device", ed.SetDevice)
				r.Get("/view", ed.View)
				r.Get("/layout", ed.Layout)
				r.Get("/code/download", ed.DownloadCode)
				r.With(limited).Post("/save", ed.Save)
			})
		})
	})

	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(d.CORSOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "HX-Request"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Disposition", "Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)(r)
}

// healthHandler probes every dependency and reports 503 when any of them
// fails.
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok"}
		if len(checks) > 0 {
			results := make(map[string]string, len(checks))
			for _, c := range checks {
				if err := c.Check(ctx); err != nil {
					results[c.Name] = err.Error()
					status = http.StatusServiceUnavailable
					body["status"] = "degraded"
					continue
				}
				results[c.Name] = "ok"
			}
			body["checks"] = results
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
