package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/photoshare/core/logger"
	"github.com/dmitrymomot/photoshare/core/upload"
)

// BodyKind selects how a request body is encoded.
type BodyKind int

const (
	// BodyJSON encodes the body with encoding/json. A nil body sends nothing.
	BodyJSON BodyKind = iota
	// BodyMultipart sends an upload.File as the only part of a multipart form.
	BodyMultipart
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// maxMessageLen bounds raw text bodies copied into error messages.
const maxMessageLen = 512

var (
	ErrEmptyBaseURL    = errors.New("api: base URL is required")
	ErrInvalidBaseURL  = errors.New("api: base URL must be absolute http(s)")
	ErrMultipartBody   = errors.New("api: multipart body must be an upload.File")
	ErrUnsupportedBody = errors.New("api: unsupported body kind")
)

// Client talks to the REST service. It is safe for concurrent use.
type Client struct {
	base        *url.URL
	http        *http.Client
	logger      *slog.Logger
	tokens      TokenSource
	onAuthError AuthErrorHook
	limiter     *rate.Limiter
	registerer  prometheus.Registerer
	metrics     *metrics
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		m, err := newMetrics(c.registerer)
		if err != nil {
			return nil, fmt.Errorf("api: register metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

// NewFromConfig creates a client from cfg. Options are applied after the
// config-derived ones and may override them.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithRateLimit(cfg.RPS, cfg.Burst),
	}
	if cfg.Metrics {
		base = append(base, WithMetrics(prometheus.DefaultRegisterer))
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// BaseURL returns the service origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do sends a request and decodes a 2xx JSON response into out (which may be
// nil). Failures are returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any, kind BodyKind, out any) error {
	endpoint := canonicalEndpoint(path)
	op := method + " " + endpoint
	reqID := uuid.NewString()
	start := time.Now()

	tok, _ := c.token(ctx)
	status, err := c.do(ctx, method, path, body, kind, out, reqID, tok)

	var apiErr *Error
	if err != nil {
		apiErr = c.classify(op, status, reqID, err)
	}

	kindLabel := Kind("")
	if apiErr != nil {
		kindLabel = apiErr.Kind
	}
	c.metrics.observe(method, endpoint, kindLabel, time.Since(start))

	if apiErr == nil {
		c.logger.DebugContext(ctx, "api request",
			logger.Method(method),
			logger.Path(path),
			logger.StatusCode(status),
			logger.RequestID(reqID),
			logger.Elapsed(start),
		)
		return nil
	}

	c.logger.WarnContext(ctx, "api request failed",
		logger.Method(method),
		logger.Path(path),
		logger.StatusCode(status),
		logger.RequestID(reqID),
		logger.ErrorKind(string(apiErr.Kind)),
		logger.Error(apiErr),
		logger.Elapsed(start),
	)

	if apiErr.Kind == KindAuth && c.onAuthError != nil {
		// The hook sees the token that was rejected, not whatever is current now.
		c.onAuthError(WithToken(ctx, tok), apiErr)
	}
	return apiErr
}

// statusError carries a non-2xx response through do.
type statusError struct {
	body []byte
}

func (e *statusError) Error() string { return "unexpected status" }

// decodeError marks a 2xx response whose body could not be decoded.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "malformed response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, body any, kind BodyKind, out any, reqID, token string) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	payload, contentType, err := encodeBody(body, kind)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, payload)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &statusError{body: raw}
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &decodeError{err: err}
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) token(ctx context.Context) (string, bool) {
	if tok, ok := TokenFromContext(ctx); ok {
		return tok, tok != ""
	}
	if c.tokens == nil {
		return "", false
	}
	tok, ok := c.tokens()
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

func (c *Client) classify(op string, status int, reqID string, err error) *Error {
	var se *statusError
	if errors.As(err, &se) {
		return &Error{
			Op:        op,
			Kind:      kindForStatus(status),
			Status:    status,
			Message:   serverMessage(se.body),
			RequestID: reqID,
		}
	}

	var de *decodeError
	if errors.As(err, &de) {
		return &Error{Op: op, Kind: KindNetwork, Status: status, Message: de.Error(), RequestID: reqID, Err: de.err}
	}

	if errors.Is(err, ErrMultipartBody) || errors.Is(err, ErrUnsupportedBody) {
		return &Error{Op: op, Kind: KindClient, RequestID: reqID, Err: err}
	}

	return &Error{Op: op, Kind: KindNetwork, Status: status, RequestID: reqID, Err: err}
}

// serverMessage pulls a human-readable message out of an error body:
// {"error": "..."}, {"error": {"message": "..."}}, {"message": "..."}, or the
// raw text.
func serverMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error", "error.message", "message"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len([]rune(msg)) > maxMessageLen {
		msg = string([]rune(msg)[:maxMessageLen])
	}
	return msg
}

func encodeBody(body any, kind BodyKind) (io.Reader, string, error) {
	switch kind {
	case BodyJSON:
		if body == nil {
			return nil, "", nil
		}
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("api: encode body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil

	case BodyMultipart:
		var f upload.File
		switch v := body.(type) {
		case upload.File:
			f = v
		case *upload.File:
			if v == nil {
				return nil, "", ErrMultipartBody
			}
			f = *v
		default:
			return nil, "", ErrMultipartBody
		}
		return encodeMultipart(f)

	default:
		return nil, "", ErrUnsupportedBody
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart writes f as the single part of a form. The part keeps the
// file's own content type.
func encodeMultipart(f upload.File) (io.Reader, string, error) {
	if f.Body == nil {
		return nil, "", ErrMultipartBody
	}
	field := f.Field
	if field == "" {
		field = upload.FieldName
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.FileName)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return nil, "", fmt.Errorf("api: read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
