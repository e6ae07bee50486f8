package middleware

import (
	"net/http"
)

// CORSNotifier reçoit les origines refusées
type CORSNotifier interface {
	SendCORSError(method, path, origin, userAgent string)
}

// isOriginAllowed vérifie une origine contre la liste exacte ("*" autorise tout)
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// CORS gère les en-têtes CORS. Un preflight d'une origine inconnue est refusé (403).
func CORS(allowedOrigins []string, notifier CORSNotifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := isOriginAllowed(origin, allowedOrigins)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			// Requêtes OPTIONS (preflight)
			if r.Method == http.MethodOptions {
				if origin != "" && !allowed {
					if notifier != nil {
						notifier.SendCORSError(r.Method, r.RequestURI, origin, r.Header.Get("User-Agent"))
					}
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
