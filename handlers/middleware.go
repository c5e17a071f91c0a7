package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"task-management-app/domain"
	"task-management-app/services"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type ctxKey int

const (
	ownerKey ctxKey = iota
	requestIdKey
)

const RequestIdHeader = "X-Request-Id"

// WithOwner attaches the authenticated owner id to ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerFrom returns the owner id resolved by MiddlewareAuth, or "".
func OwnerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

func RequestIdFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey).(string)
	return id
}

type AuthMiddleware struct {
	auth   *services.AuthService
	logger *log.Logger
}

func NewAuthMiddleware(auth *services.AuthService, logger *log.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// MiddlewareAuth accepts "Authorization: Bearer <jwt>" or "x-auth-token" and
// puts the token's user id on the request context.
func (m *AuthMiddleware) MiddlewareAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			writeErrorResp(domain.ErrMissingToken(), rw, m.logger)
			return
		}

		claims, err := m.auth.VerifyToken(tokenString)
		if err != nil {
			m.logger.Debug("rejected token", "path", r.URL.Path, "err", err)
			writeErrorResp(err, rw, m.logger)
			return
		}

		next.ServeHTTP(rw, r.WithContext(WithOwner(r.Context(), claims.Id)))
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("x-auth-token"))
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		next.ServeHTTP(rw, r)
	})
}

// MiddlewareTrace continues a trace started by the caller.
func MiddlewareTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// MiddlewareRequestLog tags every request with an id and logs its outcome.
func MiddlewareRequestLog(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIdHeader)
			if id == "" {
				id = uuid.NewString()
			}
			rw.Header().Set(RequestIdHeader, id)

			rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIdKey, id)))

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", id,
			)
		})
	}
}
