package httpapi

import (
	"net/http"

	"github.com/rs/cors"
)

// newCORS allows credentialed requests from the configured origins with
// any method and header. Preflight requests are answered without reaching
// the router.
func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodHead,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
