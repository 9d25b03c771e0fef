package api

import (
	"errors"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/services/identity"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Rejection reasons, also used as metric labels.
const (
	reasonMissingToken        = "missing_token"
	reasonTokenRejected       = "token_rejected"
	reasonProviderUnavailable = "provider_unavailable"
	reasonNotAdmin            = "not_admin"
)

// adminGate admits a request only when its bearer token resolves to the
// configured administrator email.
type adminGate struct {
	responder  Responder
	logger     zerolog.Logger
	resolver   identity.EmailResolver
	adminEmail string
}

func newAdminGate(resolver identity.EmailResolver, adminEmail string) adminGate {
	logger := log.With().Str("handlerName", "adminGate").Logger()
	return adminGate{
		responder:  NewResponder(logger),
		logger:     logger,
		resolver:   resolver,
		adminEmail: strings.TrimSpace(adminEmail),
	}
}

// gateResult is the outcome of one gate check. reason is empty on admission.
type gateResult struct {
	email  string
	reason string
	err    error
}

func (g adminGate) check(r *http.Request) gateResult {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return gateResult{reason: reasonMissingToken, err: errs.NewMissingTokenError()}
	}

	email, err := g.resolver.ResolveEmail(r.Context(), token)
	switch {
	case errors.Is(err, identity.ErrRejected):
		return gateResult{reason: reasonTokenRejected, err: errs.NewInvalidTokenError(err)}
	case err != nil:
		return gateResult{reason: reasonProviderUnavailable, err: errs.NewProviderFailureError(err)}
	}

	if !g.isAdmin(email) {
		return gateResult{email: email, reason: reasonNotAdmin, err: errs.NewNotAdminError()}
	}
	return gateResult{email: email}
}

// isAdmin compares case-insensitively. An unset admin address matches nobody.
func (g adminGate) isAdmin(email string) bool {
	return g.adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), g.adminEmail)
}

func (g adminGate) logRejection(r *http.Request, res gateResult) {
	header := r.Header.Get("Authorization")
	token, _ := bearerToken(header)

	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}

	event := g.logger.Warn()
	if res.reason == reasonProviderUnavailable {
		event = g.logger.Error().Err(res.err)
	}
	event.
		Str("route", r.Method+" "+route).
		Str("requestId", middleware.GetReqID(r.Context())).
		Str("reason", res.reason).
		Str("emailMasked", maskEmail(res.email)).
		Bool("adminEmailPresent", g.adminEmail != "").
		Bool("hasAuthHeader", header != "").
		Bool("hasBearerPrefix", hasBearerPrefix(header)).
		Int("tokenLength", len(token)).
		Msg("admin gate rejected request")

	adminGateRejections.WithLabelValues(res.reason).Inc()
}

func (g adminGate) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := g.check(r)
		if res.err != nil {
			g.logRejection(r, res)
			g.responder.WriteError(w, res.err)
			return
		}

		updatedReq := r.WithContext(ctxWithAdminEmail(r.Context(), res.email))
		next.ServeHTTP(w, updatedReq)
	})
}

// bearerToken extracts the credential from an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func hasBearerPrefix(header string) bool {
	scheme, _, found := strings.Cut(strings.TrimSpace(header), " ")
	return found && strings.EqualFold(scheme, "Bearer")
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***@" + email[at+1:]
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("requestId", middleware.GetReqID(r.Context())).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return httpLoggingMiddleware(colorLogger, next)
}

// JSONHTTPLoggingMiddleware logs HTTP requests through the global JSON logger
func JSONHTTPLoggingMiddleware(next http.Handler) http.Handler {
	return httpLoggingMiddleware(log.Logger, next)
}

func httpLoggingMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = logger.Error()
		case srw.status >= 400:
			logEvent = logger.Warn()
		default:
			logEvent = logger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Str("requestId", middleware.GetReqID(r.Context())).
			Msg("HTTP Request")
	})
}
