// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into a JSON 500 and keeps the server and
// every other editing session running. http.ErrAbortHandler is re-raised
// so net/http can drop the connection. When the handler had already
// started its response, the status can no longer change and nothing more
// is written.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			panicsRecovered.Inc()
			slog.Error("panic recovered",
				"error", rec,
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			if ww.written {
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		}()

		next.ServeHTTP(ww, r)
	})
}
