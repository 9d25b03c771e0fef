package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/services/identity"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenCookie  = "access_token"
	codeVerifierCookie = "code_verifier"
)

// Values of the auth_error query parameter on the callback redirect.
const (
	authErrorMissingCode = "missing_code"
	authErrorConfig      = "auth_config_error"
	authErrorExchange    = "exchange_failed"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	gate      adminGate
	exchanger identity.CodeExchanger
	siteRoot  string
}

func newAuthHandler(gate adminGate, exchanger identity.CodeExchanger, siteRoot string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		gate:      gate,
		exchanger: exchanger,
		siteRoot:  siteRoot,
	}
}

// adminStatus reports whether the bearer token belongs to the administrator
// @Summary Admin status
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AdminStatusResponse
// @Failure 401 {object} AdminStatusResponse "Missing or rejected token"
// @Failure 500 {object} ErrorResponse "Identity provider unavailable"
// @Router /api/auth/admin [get]
func (h authHandler) adminStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := h.gate.check(r)

		switch res.reason {
		case "":
			h.responder.WriteJSON(w, AdminStatusResponse{IsAdmin: true})
		case reasonNotAdmin:
			h.responder.WriteJSON(w, AdminStatusResponse{IsAdmin: false})
		case reasonMissingToken, reasonTokenRejected:
			h.responder.WriteJSONStatus(w, http.StatusUnauthorized, AdminStatusResponse{IsAdmin: false})
		default:
			h.gate.logRejection(r, res)
			h.responder.WriteError(w, res.err)
		}
	}
}

// callback completes the provider's authorization code flow and sends the
// visitor back to the site root
// @Summary OAuth callback
// @Tags Auth
// @Param code query string true "Authorization code"
// @Success 302 "Redirect to the site root, with auth_error on failure"
// @Router /auth/callback [get]
func (h authHandler) callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			h.redirect(w, r, authErrorMissingCode)
			return
		}

		var verifier string
		if cookie, err := r.Cookie(codeVerifierCookie); err == nil {
			verifier = cookie.Value
		}

		token, err := h.exchanger.Exchange(r.Context(), code, verifier)
		switch {
		case errors.Is(err, identity.ErrNotConfigured):
			h.logger.Error().Msg("auth callback failed: token exchange is not configured")
			h.redirect(w, r, authErrorConfig)
			return
		case err != nil:
			h.logger.Error().Err(errs.NewProviderFailureError(err)).Msg("auth callback failed")
			h.redirect(w, r, authErrorExchange)
			return
		}

		secure := strings.HasPrefix(h.siteRoot, "https://")
		http.SetCookie(w, &http.Cookie{
			Name:     accessTokenCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		http.SetCookie(w, &http.Cookie{
			Name:   codeVerifierCookie,
			Path:   "/",
			MaxAge: -1,
		})
		h.redirect(w, r, "")
	}
}

func (h authHandler) redirect(w http.ResponseWriter, r *http.Request, authError string) {
	http.Redirect(w, r, h.redirectURL(authError), http.StatusFound)
}

func (h authHandler) redirectURL(authError string) string {
	target, err := url.Parse(h.siteRoot)
	if err != nil {
		target = &url.URL{Path: "/"}
	}
	if authError != "" {
		query := target.Query()
		query.Set("auth_error", authError)
		target.RawQuery = query.Encode()
	}
	return target.String()
}
