package imageloc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/dmitrymomot/photoshare/core/logger"
)

const defaultMaxBytes = 20 << 20

// Resolver maps file names to image URLs. It is safe for concurrent use.
type Resolver struct {
	server   *url.URL
	static   *url.URL
	client   *http.Client
	logger   *slog.Logger
	maxBytes int64
}

// New validates both bases of cfg and returns a resolver.
func New(cfg Config, opts ...Option) (*Resolver, error) {
	server, err := parseBase(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	static, err := parseBase(cfg.StaticURL)
	if err != nil {
		return nil, fmt.Errorf("static url: %w", err)
	}

	r := &Resolver{
		server:   server,
		static:   static,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.Discard(),
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	u.RawQuery, u.Fragment = "", ""
	return u, nil
}

// ServerGenerated reports whether name was generated by the server on
// upload, that is whether its stem is a UUID.
func ServerGenerated(name string) bool {
	stem := strings.TrimSuffix(name, path.Ext(name))
	_, err := uuid.Parse(stem)
	return err == nil
}

// PrimaryURL returns the URL to try first, or "" for an empty name.
func (r *Resolver) PrimaryURL(name string) string {
	return r.candidates(name)[0]
}

// FallbackURL returns the URL to try after the primary one failed, or "" for
// an empty name.
func (r *Resolver) FallbackURL(name string) string {
	return r.candidates(name)[1]
}

func (r *Resolver) candidates(name string) [2]string {
	if name == "" {
		return [2]string{}
	}
	server, static := join(r.server, name), join(r.static, name)
	if ServerGenerated(name) {
		return [2]string{server, static}
	}
	return [2]string{static, server}
}

// join appends name as a single escaped path segment.
func join(base *url.URL, name string) string {
	u := *base
	u.Path = strings.TrimSuffix(base.Path, "/") + "/" + name
	u.RawPath = strings.TrimSuffix(base.EscapedPath(), "/") + "/" + url.PathEscape(name)
	return u.String()
}

// Begin starts loading name. An empty name is Unavailable at once.
func (r *Resolver) Begin(name string) *Attempt {
	a := &Attempt{name: name, urls: r.candidates(name)}
	if name == "" {
		a.state = Unavailable
	}
	return a
}

// Image is a fetched image.
type Image struct {
	URL         string
	ContentType string
	Data        []byte
	Fallback    bool // loaded from the fallback URL
}

// Fetch downloads name, trying the fallback URL once if the primary fails.
// When both fail the error wraps ErrUnavailable and both causes. If ctx ends
// the fallback is not tried.
func (r *Resolver) Fetch(ctx context.Context, name string) (Image, error) {
	a := r.Begin(name)
	if a.State() == Unavailable {
		return Image{}, ErrEmptyName
	}

	var errs []error
	for a.State() == Loading {
		u := a.URL()
		img, err := r.get(ctx, u)
		if err == nil {
			a.Succeed()
			img.Fallback = a.Tries() > 1
			r.logger.DebugContext(ctx, "image loaded",
				logger.FileName(name),
				logger.URL(u),
				logger.Attempt(a.Tries()),
			)
			return img, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			return Image{}, errors.Join(errs...)
		}

		if next, ok := a.Fail(); ok {
			r.logger.DebugContext(ctx, "image source failed, trying fallback",
				logger.FileName(name),
				logger.URL(next),
				logger.Error(err),
			)
		}
	}

	r.logger.WarnContext(ctx, "image unavailable", logger.FileName(name), logger.Errors(errs...))
	return Image{}, errors.Join(append([]error{ErrUnavailable}, errs...)...)
}

func (r *Resolver) get(ctx context.Context, u string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Image{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Image{}, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("GET %s: %w", u, err)
	}
	if int64(len(data)) > r.maxBytes {
		return Image{}, fmt.Errorf("GET %s: %w", u, ErrTooLarge)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("GET %s: %w (%s)", u, ErrNotImage, mt.String())
	}
	return Image{URL: u, ContentType: mt.String(), Data: data}, nil
}
