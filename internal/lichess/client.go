// Package lichess is a small client for the parts of the Lichess API that a
// board client needs: the account, the board endpoints and the two NDJSON
// streams.
package lichess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kindlechess/internal/ndjson"
	"kindlechess/internal/oauth"
	"kindlechess/pkg/logging"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public Lichess API.
const DefaultBaseURL = "https://lichess.org/api"

// Client talks to the Lichess REST API. It holds no credentials itself:
// every authenticated call takes the token to use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	streamOpts []ndjson.Option
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another deployment, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client. It must not have a
// Timeout, since streams stay open for the whole game.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithStreamLineLimit caps the size of a single event on the streams.
// Zero keeps the decoder default.
func WithStreamLineLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.streamOpts = append(c.streamOpts, ndjson.WithMaxLineSize(n))
		}
	}
}

// NewClient creates a client for the public Lichess API unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		userAgent:  "kindlechess",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// bearer returns an HTTP client that adds token as a bearer header.
func (c *Client) bearer(ctx context.Context, token *oauth.TokenInfo) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token.OAuth2Token()))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// do sends req, authenticated when token is non-nil, and returns the
// response if it is 2xx. Other statuses become an *APIError of kind.
func (c *Client) do(ctx context.Context, req *http.Request, token *oauth.TokenInfo, op string, kind error) (*http.Response, error) {
	hc := c.httpClient
	if token != nil {
		hc = c.bearer(ctx, token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lichess %s: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := newAPIError(op, kind, resp)
		logging.Debug("Lichess", "%s %s failed: %s", req.Method, req.URL.Path, apiErr)
		return nil, apiErr
	}
	return resp, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, token *oauth.TokenInfo, op string, kind error, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(ctx, req, token, op, kind)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lichess %s: failed to decode response: %w", op, err)
	}
	return nil
}
