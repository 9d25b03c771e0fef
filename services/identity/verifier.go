package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rs/zerolog"
)

var signingMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Claims are the access token claims the gate relies on.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier validates provider-signed JWTs without a network round trip
// per request.
type TokenVerifier struct {
	keyfunc jwt.Keyfunc
	issuer  string
	jwks    *keyfunc.JWKS
}

var _ EmailResolver = (*TokenVerifier)(nil)

func NewTokenVerifier(ctx context.Context, cfg config.Identity, logger zerolog.Logger) (*TokenVerifier, error) {
	v := &TokenVerifier{issuer: cfg.Issuer}

	if cfg.JWKSURL != "" {
		options := keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Error().Err(err).Msg("jwks refresh error")
			},
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL, options)
		if err != nil {
			return nil, fmt.Errorf("load jwks: %w", err)
		}
		v.jwks = jwks
		v.keyfunc = jwks.Keyfunc
		return v, nil
	}

	key, err := parsePublicKey(cfg.PublicKey)
	if err != nil {
		return nil, err
	}
	v.keyfunc = func(*jwt.Token) (any, error) { return key, nil }
	return v, nil
}

// parsePublicKey accepts an RSA or EC PEM block. Escaped newlines from
// single-line environment values are expanded first.
func parsePublicKey(raw string) (any, error) {
	pem := []byte(strings.ReplaceAll(strings.TrimSpace(raw), `\n`, "\n"))

	if key, err := jwt.ParseRSAPublicKeyFromPEM(pem); err == nil {
		return key, nil
	}
	if key, err := jwt.ParseECPublicKeyFromPEM(pem); err == nil {
		return key, nil
	}
	return nil, errors.New("IDP_PUBLIC_KEY is not an RSA or EC public key in PEM form")
}

func (v *TokenVerifier) ResolveEmail(ctx context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(signingMethods),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyfunc, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return "", fmt.Errorf("%w: token has no email claim", ErrRejected)
	}
	return email, nil
}

// Close stops the background JWKS refresh, if any.
func (v *TokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
