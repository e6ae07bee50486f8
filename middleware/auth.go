package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/utils"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

// TokenVerifier vérifie un bearer token et résout le principal (JWT local ou Firebase)
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Principal, error)
}

// Auth vérifie le bearer token et place le principal dans le contexte
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			// Format "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			principal, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				log.Printf("⚠️  Token refusé: %v", err)
				utils.RespondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if !principal.IsAuthenticated() {
				utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal récupère le principal depuis le contexte
func GetPrincipal(ctx context.Context) *models.Principal {
	p, ok := ctx.Value(PrincipalContextKey).(*models.Principal)
	if !ok {
		return nil
	}
	return p
}
