// Package client is a Go SDK for the catalog HTTP API plus the list state
// machine a front end drives it with.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/models"
)

var ErrNoSession = errors.New("client: no session token")

// APIError is a non-2xx answer from the catalog API.
type APIError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"error"`
	Field      string            `json:"field,omitempty"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return fmt.Sprintf("catalog api: %d %s", e.StatusCode, msg)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Page is one list response.
type Page struct {
	Videos     []models.VideoEntry
	TotalCount int64
	Limit      int
	Offset     int
}

type Client struct {
	httpClient *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *resty.Client) {
		c.SetTransport(hc.Transport)
		if hc.Timeout > 0 {
			c.SetTimeout(hc.Timeout)
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	for _, opt := range opts {
		opt(httpClient)
	}
	return &Client{httpClient: httpClient}
}

func (c *Client) ListVideos(ctx context.Context, q catalog.VideoQuery) (Page, error) {
	var videos []models.VideoEntry
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.Values()).
		SetResult(&videos).
		SetError(&APIError{}).
		Get("/api/videos")
	if err := check(resp, err); err != nil {
		return Page{}, err
	}

	page := Page{Videos: videos, Limit: q.Limit, Offset: q.Offset}
	if page.Videos == nil {
		page.Videos = []models.VideoEntry{}
	}
	if v, err := strconv.ParseInt(resp.Header().Get("x-total-count"), 10, 64); err == nil {
		page.TotalCount = v
	}
	if v, err := strconv.Atoi(resp.Header().Get("x-limit")); err == nil {
		page.Limit = v
	}
	if v, err := strconv.Atoi(resp.Header().Get("x-offset")); err == nil {
		page.Offset = v
	}
	return page, nil
}

func (c *Client) GetVideo(ctx context.Context, id uuid.UUID) (*models.VideoEntry, error) {
	var entry models.VideoEntry
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&entry).
		SetError(&APIError{}).
		Get("/api/videos/" + id.String())
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateVideo posts body as is; field names follow the entry's JSON form.
func (c *Client) CreateVideo(ctx context.Context, session *Session, body map[string]any) (*models.VideoEntry, error) {
	req, err := c.authorized(ctx, session)
	if err != nil {
		return nil, err
	}

	var entry models.VideoEntry
	resp, err := req.SetBody(body).SetResult(&entry).Post("/api/videos")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateVideo sends only the fields in body.
func (c *Client) UpdateVideo(ctx context.Context, session *Session, id uuid.UUID, body map[string]any) (*models.VideoEntry, error) {
	req, err := c.authorized(ctx, session)
	if err != nil {
		return nil, err
	}

	var entry models.VideoEntry
	resp, err := req.SetBody(body).SetResult(&entry).Patch("/api/videos/" + id.String())
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteVideo(ctx context.Context, session *Session, id uuid.UUID) error {
	req, err := c.authorized(ctx, session)
	if err != nil {
		return err
	}

	resp, err := req.Delete("/api/videos/" + id.String())
	return check(resp, err)
}

// IsAdmin asks the server whether token belongs to the administrator. A
// missing or rejected token is reported as false without error.
func (c *Client) IsAdmin(ctx context.Context, token string) (bool, error) {
	var status struct {
		IsAdmin bool `json:"isAdmin"`
	}
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&status).
		SetError(&APIError{})
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Get("/api/auth/admin")
	if err == nil && resp.StatusCode() == http.StatusUnauthorized {
		return false, nil
	}
	if err := check(resp, err); err != nil {
		return false, err
	}
	return status.IsAdmin, nil
}

func (c *Client) authorized(ctx context.Context, session *Session) (*resty.Request, error) {
	token := session.Token()
	if token == "" {
		return nil, ErrNoSession
	}
	return c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetError(&APIError{}), nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("catalog api: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.StatusCode = resp.StatusCode()
	return apiErr
}
