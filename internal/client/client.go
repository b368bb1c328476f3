package client

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

	"kai/internal/api"
	"kai/internal/config"
	"kai/internal/logging"
)

const defaultUserAgent = "kai-cli/1.0"

// Client issues authenticated REST calls against the Kai backend. Every
// request flows through the same pipeline: attach bearer token, execute,
// and on a 401 perform one coalesced refresh followed by exactly one
// retry of the original request.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	session      *Session
	logger       *slog.Logger
	userAgent    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for regular requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithUploadHTTPClient overrides the HTTP client used for media uploads,
// which carry a longer timeout than text requests.
func WithUploadHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.uploadClient = httpClient
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(agent) != "" {
			c.userAgent = agent
		}
	}
}

// New creates a backend client.
func New(baseURL string, session *Session, logger *slog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base url required")
	}
	if session == nil {
		return nil, errors.New("session required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		uploadClient: &http.Client{Timeout: 5 * time.Minute},
		session:      session,
		logger:       logging.WithComponent(logger, "client"),
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig creates a backend client with timeouts and paths taken from
// the configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	session, err := NewSession(NewFileTokenStore(cfg.TokenPath()))
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Server.RequestTimeout) * time.Second}),
		WithUploadHTTPClient(&http.Client{Timeout: time.Duration(cfg.Server.UploadTimeout) * time.Second}),
	}
	return New(cfg.Server.BaseURL, session, logger, append(base, opts...)...)
}

// Session exposes the credential state for callers that need to inspect or
// clear it (logout, status reporting).
func (c *Client) Session() *Session {
	return c.session
}

// Authenticated reports whether the client holds credentials.
func (c *Client) Authenticated() bool {
	return c.session.Authenticated()
}

// apiRequest is a fully buffered request description. Buffering the body
// lets the pipeline replay the request byte-for-byte after a token refresh.
type apiRequest struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	upload      bool
	noAuth      bool
}

// do runs the request pipeline. The flow is a fixed state machine:
// first attempt, then at most one refresh and one retry. A second 401
// terminates the session rather than looping.
func (c *Client) do(ctx context.Context, req *apiRequest) (*http.Response, error) {
	token, hasToken := c.session.AccessToken()
	if !req.noAuth && !hasToken {
		return nil, fmt.Errorf("%w: no session, sign in first", ErrNotAuthenticated)
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if req.noAuth || resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drainBody(resp)

	c.logger.Debug("token rejected, refreshing",
		slog.String(logging.FieldEndpoint, req.path))
	fresh, err := c.session.Refresh(ctx, token, c.exchangeRefresh)
	if err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, req, fresh)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drainBody(resp)
		_ = c.session.Clear()
		return nil, ErrSessionExpired
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, req *apiRequest, token string) (*http.Response, error) {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" && !req.noAuth {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpClient := c.httpClient
	if req.upload {
		httpClient = c.uploadClient
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &ConnectivityError{Endpoint: req.path, Err: err}
	}
	return resp, nil
}

// exchangeRefresh trades the refresh token for a new credential pair. Runs
// outside the authenticated pipeline so it can never recurse into refresh.
func (c *Client) exchangeRefresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	body, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	req := &apiRequest{
		method:      http.MethodPost,
		path:        "/auth/refresh",
		body:        body,
		contentType: "application/json",
		noAuth:      true,
	}
	resp, err := c.send(ctx, req, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(req.path, resp)
	}
	var tokens api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, req.path, err)
	}
	return &tokens, nil
}

// doJSON runs the pipeline and decodes a JSON response into out. A nil out
// discards the body.
func (c *Client) doJSON(ctx context.Context, req *apiRequest, out any) error {
	started := time.Now()
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(req.path, resp)
	}

	c.logger.Debug("request completed",
		slog.String(logging.FieldEndpoint, req.path),
		slog.Int(logging.FieldStatus, resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)))

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, req.path, err)
	}
	return nil
}

// getJSON is doJSON for bodyless GET requests.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, &apiRequest{
		method: http.MethodGet,
		path:   path,
		query:  query,
	}, out)
}

// writeJSON is doJSON for requests carrying a JSON body.
func (c *Client) writeJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := encodeBody(in, path)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, &apiRequest{
		method:      method,
		path:        path,
		body:        body,
		contentType: "application/json",
	}, out)
}

func encodeBody(in any, path string) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncoding, path, err)
	}
	return body, nil
}

type errorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	switch {
	case b.Detail != "":
		return b.Detail
	case b.Error != "":
		return b.Error
	default:
		return b.Message
	}
}

func (c *Client) statusError(path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed errorBody
	_ = json.Unmarshal(data, &parsed)

	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		Message:    parsed.text(),
	}
	c.logger.Debug("request failed",
		slog.String(logging.FieldEndpoint, path),
		slog.Int(logging.FieldStatus, resp.StatusCode))
	return statusErr
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
