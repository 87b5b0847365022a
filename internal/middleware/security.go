// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders returns middleware that adds security-related headers to
// every response. In development the Content-Security-Policy also allows
// the TailwindCSS CDN script; in production HSTS is sent.
func SecureHeaders(devMode bool, imageOrigin string) func(http.Handler) http.Handler {
	csp := contentSecurityPolicy(devMode, imageOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Content-Security-Policy", csp)
			if !devMode {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// contentSecurityPolicy builds the CSP header value. imageOrigin is the
// public bucket URL uploaded images are served from; it may be empty.
func contentSecurityPolicy(devMode bool, imageOrigin string) string {
	scripts := []string{"'self'", "'unsafe-inline'"}
	styles := []string{"'self'", "'unsafe-inline'"}
	if devMode {
		scripts = append(scripts, "https://cdn.tailwindcss.com")
	}
	images := []string{"'self'", "data:"}
	if imageOrigin != "" {
		images = append(images, imageOrigin)
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + strings.Join(scripts, " "),
		"style-src " + strings.Join(styles, " "),
		"img-src " + strings.Join(images, " "),
		"connect-src 'self'",
		"frame-ancestors 'self'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}
