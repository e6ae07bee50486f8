package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"
)

// ErrorNotifier reçoit les erreurs serveur (Slack)
type ErrorNotifier interface {
	SendCriticalError(method, path, statusCode, errorMessage, origin, userAgent string)
}

// responseWriter wrapper pour capturer le code de statut
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// isCriticalError : seules les erreurs serveur (5xx) sont notifiées.
// Les 4xx du parcours (validation, rôle, étape) sont des erreurs utilisateur.
func isCriticalError(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError
}

// Logging enregistre les requêtes HTTP et notifie les erreurs critiques
func Logging(notifier ErrorNotifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			statusCode := rw.statusCode

			if statusCode < http.StatusBadRequest {
				return
			}
			log.Printf("⚠️ %s %s -> %d (%s)", r.Method, r.RequestURI, statusCode, duration)

			if isCriticalError(statusCode) && notifier != nil {
				notifier.SendCriticalError(
					r.Method,
					r.RequestURI,
					strconv.Itoa(statusCode),
					http.StatusText(statusCode),
					r.Header.Get("Origin"),
					r.Header.Get("User-Agent"),
				)
			}
		})
	}
}
