// Package identity talks to the external identity provider: it resolves bearer
// tokens to a verified email and exchanges authorization codes for tokens.
package identity

import (
	"context"
	"errors"

	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rs/zerolog"
)

var (
	// ErrRejected means the provider refused the credential.
	ErrRejected = errors.New("identity provider rejected the token")
	// ErrUnavailable means the provider could not be reached or failed.
	ErrUnavailable = errors.New("identity provider unavailable")
	// ErrNotConfigured means the code exchange has no client settings.
	ErrNotConfigured = errors.New("identity provider code exchange is not configured")
)

// EmailResolver turns a bearer token into the caller's verified email.
type EmailResolver interface {
	ResolveEmail(ctx context.Context, token string) (string, error)
}

// CodeExchanger completes the authorization code flow and returns the access token.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, verifier string) (string, error)
}

// NewResolver verifies tokens locally when a JWKS URL or public key is
// configured and falls back to the provider's user endpoint otherwise.
// The returned close func stops background key refresh.
func NewResolver(ctx context.Context, cfg config.Identity, logger zerolog.Logger) (EmailResolver, func(), error) {
	if cfg.JWKSURL != "" || cfg.PublicKey != "" {
		verifier, err := NewTokenVerifier(ctx, cfg, logger)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info().Bool("jwks", cfg.JWKSURL != "").Msg("Verifying access tokens locally")
		return verifier, verifier.Close, nil
	}

	logger.Info().Str("url", cfg.URL).Msg("Resolving access tokens through the provider user endpoint")
	return NewRemoteResolver(cfg), func() {}, nil
}
