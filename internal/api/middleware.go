package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
)

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by the request ID middleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestIDValuer lets kratos loggers pick the request id out of the context passed to WithContext.
func requestIDValuer() log.Valuer {
	return func(ctx context.Context) any {
		return RequestIDFromContext(ctx)
	}
}

// requestID reuses the caller's X-Request-ID when it looks sane, otherwise generates one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs every request and feeds the request metrics, labelled by route pattern.
func (app *App) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}

		if app.metrics != nil {
			app.metrics.ObserveRequest(r.Method, route, status, elapsed)
		}
		app.log.WithContext(r.Context()).Infof("%s %s status=%d bytes=%d duration=%s remote=%s",
			r.Method, r.URL.Path, status, ww.BytesWritten(), elapsed, r.RemoteAddr)
	})
}

// recoverer turns a handler panic into the generic 500 body.
func (app *App) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			app.log.WithContext(r.Context()).Errorf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rvr, debug.Stack())
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgGeneric})
		}()

		next.ServeHTTP(w, r)
	})
}
