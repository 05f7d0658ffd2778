package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fieldservice-backend/internal/config"
	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/security"
)

// AuthMiddleware checks the bearer token on every route whose name is not
// public in config.EndpointSecurityConfig.
func AuthMiddleware(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := ""
			if route := mux.CurrentRoute(r); route != nil {
				name = route.GetName()
			}
			if config.GetSecurityLevel(name) == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization token is not provided"})
				return
			}
			claims, err := tm.ValidateAccessToken(token)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, security.ErrWrongTokenType) {
					status = http.StatusForbidden
				}
				writeJSON(w, status, errorResponse{Error: err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), claims.Actor())))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// LoggingMiddleware logs one line per request at debug level.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
