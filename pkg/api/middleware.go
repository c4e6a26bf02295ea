package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ---- Context Keys ----

type contextKey string

const (
	contextKeyRequestID contextKey = "requestID"
)

// ---- Middleware Types ----

// AuthConfig configuração de autenticação
type AuthConfig struct {
	Enabled bool
	APIKeys []string // Lista de API keys válidas
}

// ---- Middlewares ----

// Logger middleware para logging de requisições; também injeta o logger no contexto
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := log.FromContext(r.Context()).WithValues("requestID", GetRequestID(r.Context()))
		ctx := log.IntoContext(r.Context(), logger)

		// Wrapper para capturar status code
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", ww.statusCode,
			"duration", time.Since(start).String(),
		)
	})
}

// Recoverer middleware para recuperação de panics
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.FromContext(r.Context()).Info("Recovered from panic", "panic", rec)
				writeJSON(w, http.StatusInternalServerError, NewErrorResponse("INTERNAL_ERROR", "Internal server error", ""))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// APIKeyAuth middleware para autenticação via API Key
func APIKeyAuth(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			// Tenta obter API key do header
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				// Tenta do Authorization header (Bearer token)
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					apiKey = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			if apiKey == "" {
				writeJSON(w, http.StatusUnauthorized, NewErrorResponse("UNAUTHORIZED", "API key required", ""))
				return
			}

			for _, key := range config.APIKeys {
				if key == apiKey {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, http.StatusUnauthorized, NewErrorResponse("INVALID_API_KEY", "Invalid API key", ""))
		})
	}
}

// RequestID middleware para adicionar request ID
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ---- Helper Types ----

// responseWriter wrapper para capturar status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ---- Helper Functions ----

func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return time.Now().Format("20060102150405") + "-" + hex.EncodeToString(b)
}

// GetRequestID obtém o request ID do contexto
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
