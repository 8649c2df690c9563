// Package api is the HTTP client for the remote HR service. The portal owns
// no wire formats of its own; it is a pure consumer of the service's
// bearer-authenticated JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/allwin2012/Hr.io/internal/shared/apperror"
	"github.com/allwin2012/Hr.io/internal/shared/contextutil"
)

// TokenSource supplies the bearer credential for outgoing requests. An empty
// string sends the request unauthenticated (login only).
type TokenSource func() string

type Client struct {
	base    string
	http    *http.Client
	token   TokenSource
	limiter *rate.Limiter
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit caps outgoing request rate. Protects the shared HR service
// from bursty CLI loops.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("api.client") }
}

func New(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 15 * time.Second},
		token:  token,
		logger: zap.L().Named("api.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// remoteError covers the error body shapes the HR service emits: either a
// flat {code,message} or an enveloped {error:{code,message}}.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperror.Wrap(err, apperror.CodeTransport, "request cancelled while rate limited", http.StatusServiceUnavailable)
		}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeInternalError, "encode request body", http.StatusInternalServerError)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "build request", http.StatusInternalServerError)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rid := contextutil.GetRequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", rid)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", rid),
			zap.Error(err),
		)
		return apperror.Wrap(err, apperror.CodeTransport, "The HR service could not be reached", http.StatusServiceUnavailable)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", rid),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperror.Wrap(err, apperror.CodeTransport, "decode response body", http.StatusServiceUnavailable)
		}
	}
	return nil
}

// mapError converts an HTTP error response into the portal taxonomy. The
// code embedded in the body wins when present; otherwise the status decides.
func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var re remoteError
	_ = json.Unmarshal(raw, &re)
	code, message := re.Code, re.Message
	if re.Error != nil {
		code, message = re.Error.Code, re.Error.Message
	}
	if code == "" {
		code = codeForStatus(resp.StatusCode)
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return apperror.New(code, message, resp.StatusCode)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperror.CodeInvalidInput
	case http.StatusUnauthorized:
		return apperror.CodeUnauthorized
	case http.StatusForbidden:
		return apperror.CodeForbidden
	case http.StatusNotFound:
		return apperror.CodeNotFound
	case http.StatusConflict:
		return apperror.CodeInvalidState
	default:
		return apperror.CodeTransport
	}
}
