package middleware

import (
	"log"
	"net/http"

	"olympiad-registration-backend/utils"
)

// RequireAdmin vérifie que le principal est administrateur
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if !p.IsAuthenticated() {
				utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !p.IsAdmin() {
				log.Printf("⚠️  Accès admin refusé pour: %s", p.ID)
				utils.RespondError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCountry vérifie que le principal est rattaché à un pays
func RequireCountry() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if !p.IsAuthenticated() {
				utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !p.HasCountry() {
				utils.RespondError(w, http.StatusForbidden, "No country is associated with this account")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
