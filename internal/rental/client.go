package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API defines the remote operations of the six-cities REST API.
// This interface is implemented by *Client and can be replaced in tests.
type API interface {
	FetchOffers(ctx context.Context) ([]Offer, error)
	FetchOffer(ctx context.Context, offerID string) (OfferDetails, error)
	FetchNearby(ctx context.Context, offerID string) ([]Offer, error)
	FetchComments(ctx context.Context, offerID string) ([]Feedback, error)
	PostComment(ctx context.Context, offerID string, input CommentInput) (Feedback, error)
	CheckSession(ctx context.Context) (UserAuth, error)
	Login(ctx context.Context, creds Credentials) (UserAuth, error)
	Logout(ctx context.Context) error
	FetchFavorites(ctx context.Context) ([]Offer, error)
	SetFavorite(ctx context.Context, offerID string, favorite bool) (OfferDetails, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// TokenSource supplies the persisted auth token and forgets it on 401.
type TokenSource interface {
	Token() string
	Clear() error
}

// ErrUnauthorized is matched by errors.Is for any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// APIError reports an HTTP status >= 400 from the API.
type APIError struct {
	Status int
	Path   string
	Body   ErrorBody
}

func (e *APIError) Error() string {
	if msg := strings.TrimSpace(e.Body.Message); msg != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, msg)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// FirstValidationMessage returns the first message of the first validation detail.
func (e *APIError) FirstValidationMessage() (string, bool) {
	if e == nil || len(e.Body.Details) == 0 || len(e.Body.Details[0].Messages) == 0 {
		return "", false
	}
	msg := strings.TrimSpace(e.Body.Details[0].Messages[0])
	return msg, msg != ""
}

// Client talks to the six-cities HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	logger    *slog.Logger
	userAgent string
}

const (
	// DefaultBaseURL is the public six-cities API endpoint.
	DefaultBaseURL   = "https://14.design.htmlacademy.pro/six-cities"
	defaultUserAgent = "sixcities/0.1"
	defaultTimeout   = 5 * time.Second

	// TokenHeader carries the auth token on every request.
	TokenHeader     = "X-Token"
	requestIDHeader = "X-Request-ID"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout overrides the per-request timeout. Defaults to 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource attaches the persisted auth token to requests.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    slog.New(slog.DiscardHandler),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchOffers retrieves every offer across all cities.
func (c *Client) FetchOffers(ctx context.Context) ([]Offer, error) {
	var payload []Offer
	if err := c.do(ctx, http.MethodGet, "/offers", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchOffer retrieves the full record of one offer.
func (c *Client) FetchOffer(ctx context.Context, offerID string) (OfferDetails, error) {
	if strings.TrimSpace(offerID) == "" {
		return OfferDetails{}, fmt.Errorf("offer id required")
	}
	var payload OfferDetails
	if err := c.do(ctx, http.MethodGet, "/offers/"+url.PathEscape(offerID), nil, &payload); err != nil {
		return OfferDetails{}, err
	}
	return payload, nil
}

// FetchNearby retrieves offers located near the given offer.
func (c *Client) FetchNearby(ctx context.Context, offerID string) ([]Offer, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, fmt.Errorf("offer id required")
	}
	var payload []Offer
	if err := c.do(ctx, http.MethodGet, "/offers/"+url.PathEscape(offerID)+"/nearby", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchComments retrieves reviews of the given offer.
func (c *Client) FetchComments(ctx context.Context, offerID string) ([]Feedback, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, fmt.Errorf("offer id required")
	}
	var payload []Feedback
	if err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(offerID), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// PostComment submits a review and returns the stored review.
func (c *Client) PostComment(ctx context.Context, offerID string, input CommentInput) (Feedback, error) {
	if strings.TrimSpace(offerID) == "" {
		return Feedback{}, fmt.Errorf("offer id required")
	}
	var payload Feedback
	if err := c.do(ctx, http.MethodPost, "/comments/"+url.PathEscape(offerID), input, &payload); err != nil {
		return Feedback{}, err
	}
	return payload, nil
}

// CheckSession returns the identity bound to the current token.
func (c *Client) CheckSession(ctx context.Context) (UserAuth, error) {
	var payload UserAuth
	if err := c.do(ctx, http.MethodGet, "/login", nil, &payload); err != nil {
		return UserAuth{}, err
	}
	return payload, nil
}

// Login exchanges credentials for an identity carrying a fresh token.
func (c *Client) Login(ctx context.Context, creds Credentials) (UserAuth, error) {
	var payload UserAuth
	if err := c.do(ctx, http.MethodPost, "/login", creds, &payload); err != nil {
		return UserAuth{}, err
	}
	return payload, nil
}

// Logout ends the session. Only 204 No Content counts as success.
func (c *Client) Logout(ctx context.Context) error {
	status, err := c.send(ctx, http.MethodDelete, "/logout", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("api /logout returned status %d, want %d", status, http.StatusNoContent)
	}
	return nil
}

// FetchFavorites retrieves the authenticated user's favorite offers.
func (c *Client) FetchFavorites(ctx context.Context) ([]Offer, error) {
	var payload []Offer
	if err := c.do(ctx, http.MethodGet, "/favorite", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SetFavorite marks or unmarks an offer as favorite and returns its updated record.
func (c *Client) SetFavorite(ctx context.Context, offerID string, favorite bool) (OfferDetails, error) {
	if strings.TrimSpace(offerID) == "" {
		return OfferDetails{}, fmt.Errorf("offer id required")
	}
	status := "0"
	if favorite {
		status = "1"
	}
	var payload OfferDetails
	if err := c.do(ctx, http.MethodPost, "/favorite/"+url.PathEscape(offerID)+"/"+status, nil, &payload); err != nil {
		return OfferDetails{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	_, err := c.send(ctx, method, path, body, dest)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body, dest any) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(TokenHeader, token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request done",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(started))

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn("clear token after 401", "request_id", requestID, "error", err)
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Path: path}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if len(bytes.TrimSpace(raw)) > 0 {
			_ = json.Unmarshal(raw, &apiErr.Body)
		}
		return resp.StatusCode, apiErr
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
