package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(app.accessLog)
	r.Use(app.recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.Get("/ping", PingHandler)
	r.Get("/openapi.yaml", OpenAPIHandler)
	if app.metrics != nil {
		r.Handle("/metrics", app.metrics.Handler())
	}

	r.Route("/videos", func(r chi.Router) {
		r.Post("/", app.PublishVideoHandler)
		r.Get("/", app.ListVideosHandler)
		r.Get("/search", app.SearchVideosHandler)
		r.Get("/{id}", app.GetVideoHandler)
		r.Put("/{id}", app.UpdateVideoHandler)
		r.Delete("/{id}", app.DeleteVideoHandler)
		r.Get("/{id}/play", app.PlayVideoHandler)
		r.Get("/{id}/engagement", app.EngagementHandler)
	})

	return r
}
