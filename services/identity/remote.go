package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rpupo63/video-catalog-backend/config"
)

// RemoteResolver asks the provider's user endpoint who owns a token.
type RemoteResolver struct {
	httpClient *resty.Client
	userPath   string
	apiKey     string
}

var _ EmailResolver = (*RemoteResolver)(nil)

func NewRemoteResolver(cfg config.Identity) *RemoteResolver {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &RemoteResolver{
		httpClient: client,
		userPath:   cfg.UserPath,
		apiKey:     cfg.APIKey,
	}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r *RemoteResolver) ResolveEmail(ctx context.Context, token string) (string, error) {
	var user remoteUser
	req := r.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user)
	if r.apiKey != "" {
		req.SetHeader("apikey", r.apiKey)
	}

	resp, err := req.Get(r.userPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode() >= http.StatusInternalServerError:
		return "", fmt.Errorf("%w: user lookup returned %d", ErrUnavailable, resp.StatusCode())
	case resp.IsError():
		return "", fmt.Errorf("%w: user lookup returned %d", ErrRejected, resp.StatusCode())
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		return "", fmt.Errorf("%w: user has no email", ErrRejected)
	}
	return email, nil
}
