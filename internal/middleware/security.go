// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// ContentSecurityPolicy allows no scripts at all. Email previews pull
// images, fonts and stylesheets from wherever the author hosts them, so
// those are open to any https origin.
const ContentSecurityPolicy = "default-src 'self'; " +
	"img-src * data: blob:; " +
	"style-src 'self' 'unsafe-inline' https:; " +
	"font-src 'self' https: data:; " +
	"script-src 'none'; object-src 'none'; base-uri 'none'; " +
	"form-action 'self'; frame-ancestors 'self'"

var secureHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "SAMEORIGIN",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
	"Content-Security-Policy": ContentSecurityPolicy,
}

// SecureHeaders sets the browser hardening headers on every response.
// Headers the handler sets itself take precedence.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range secureHeaders {
			h.Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// NoStore marks editor responses as uncacheable. Editor state changes with
// every request.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Add("Vary", "Cookie")
		next.ServeHTTP(w, r)
	})
}
