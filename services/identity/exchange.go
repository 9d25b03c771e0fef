package identity

import (
	"context"
	"fmt"

	"github.com/rpupo63/video-catalog-backend/config"
	"golang.org/x/oauth2"
)

// OAuthExchanger swaps an authorization code for an access token at the
// provider's token endpoint.
type OAuthExchanger struct {
	oauth *oauth2.Config
}

var _ CodeExchanger = (*OAuthExchanger)(nil)

func NewOAuthExchanger(cfg config.Identity) *OAuthExchanger {
	if cfg.TokenURL == "" || cfg.ClientID == "" {
		return &OAuthExchanger{}
	}
	return &OAuthExchanger{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Exchange completes the code flow. verifier is the PKCE code verifier and
// may be empty.
func (e *OAuthExchanger) Exchange(ctx context.Context, code, verifier string) (string, error) {
	if e.oauth == nil {
		return "", ErrNotConfigured
	}

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	token, err := e.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	return token.AccessToken, nil
}
