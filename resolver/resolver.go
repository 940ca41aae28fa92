// Package resolver discovers a video's duration by asking an ordered chain of HTTP
// sources and falling back to a placeholder when none of them knows.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/trimline-cli/config"
	"github.com/user/trimline-cli/logging"
	"github.com/user/trimline-cli/metrics"
	"github.com/user/trimline-cli/pkg/httpx"
	"github.com/user/trimline-cli/trim"
)

// ErrNoDuration is returned by a Source that answered without a usable duration.
var ErrNoDuration = errors.New("resolver: no duration")

// Source names, in fallback order.
const (
	SourceLifecycle   = "lifecycle"
	SourceMetadata    = "metadata"
	SourceInfo        = "info"
	SourcePlaceholder = "placeholder"
)

// maxBodyBytes caps how much of a source response is decoded.
const maxBodyBytes = 1 << 20

// Source is one place a duration may be discovered.
type Source interface {
	Name() string
	Duration(ctx context.Context, assetID string) (float64, error)
}

// HTTPSource GETs a URL built from a template and reads the optional numeric
// "duration" field of the JSON response.
type HTTPSource struct {
	name     string
	template string
	client   *http.Client
}

// NewHTTPSource creates a source. Every "{id}" in urlTemplate is replaced with the
// path-escaped asset ID.
func NewHTTPSource(name, urlTemplate string, client *http.Client) *HTTPSource {
	if client == nil {
		client = httpx.NewClient(0)
	}
	return &HTTPSource{name: name, template: urlTemplate, client: client}
}

// Name returns the source name.
func (s *HTTPSource) Name() string { return s.name }

// URL returns the request URL for assetID.
func (s *HTTPSource) URL(assetID string) string {
	return strings.ReplaceAll(s.template, "{id}", url.PathEscape(assetID))
}

type durationBody struct {
	Duration *float64 `json:"duration"`
}

// Duration fetches the duration. A non-2xx status, an undecodable body or a
// missing, zero or negative duration all return an error wrapping ErrNoDuration.
func (s *HTTPSource) Duration(ctx context.Context, assetID string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(assetID), nil)
	if err != nil {
		return 0, fmt.Errorf("%s: build request: %w", s.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return 0, fmt.Errorf("%s: status %d: %w", s.name, resp.StatusCode, ErrNoDuration)
	}

	var body durationBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return 0, fmt.Errorf("%s: decode: %v: %w", s.name, err, ErrNoDuration)
	}
	if body.Duration == nil {
		return 0, fmt.Errorf("%s: duration missing: %w", s.name, ErrNoDuration)
	}
	d := *body.Duration
	if !(d > 0) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%s: duration %v: %w", s.name, d, ErrNoDuration)
	}
	return d, nil
}

// Result is the outcome of a resolution. Placeholder is set when every source
// failed and Duration is the provisional value.
type Result struct {
	Duration    float64
	Source      string
	Placeholder bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlaceholder overrides trim.PlaceholderDuration.
func WithPlaceholder(d float64) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.placeholder = d
		}
	}
}

// WithTimeout bounds each source attempt.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver tries its sources in order. It never retries a source.
type Resolver struct {
	sources     []Source
	placeholder float64
	timeout     time.Duration
	logger      zerolog.Logger
}

// New creates a resolver over sources, tried in the given order.
func New(sources []Source, opts ...Option) *Resolver {
	r := &Resolver{
		sources:     sources,
		placeholder: trim.PlaceholderDuration,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromConfig builds the lifecycle, metadata, info chain from the configured URL
// templates, skipping empty ones.
func FromConfig(cfg config.ResolverConfig, placeholder float64) *Resolver {
	client := httpx.NewClient(cfg.Timeout)
	var sources []Source
	for _, s := range []struct{ name, tmpl string }{
		{SourceLifecycle, cfg.LifecycleURL},
		{SourceMetadata, cfg.MetadataURL},
		{SourceInfo, cfg.InfoURL},
	} {
		if s.tmpl != "" {
			sources = append(sources, NewHTTPSource(s.name, s.tmpl, client))
		}
	}
	return New(sources,
		WithPlaceholder(placeholder),
		WithTimeout(cfg.Timeout),
		WithLogger(logging.WithComponent("resolver")),
	)
}

// Sources returns the source names in fallback order.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the first positive duration reported by a source, or the
// placeholder when every source fails. It does not fail.
func (r *Resolver) Resolve(ctx context.Context, assetID string) Result {
	for _, s := range r.sources {
		if ctx.Err() != nil {
			break
		}
		d, err := r.try(ctx, s, assetID)
		if err == nil {
			metrics.RecordDurationLookup(s.Name(), metrics.OutcomeHit)
			r.logger.Debug().
				Str(logging.FieldAssetID, assetID).
				Str(logging.FieldSource, s.Name()).
				Float64(logging.FieldDuration, d).
				Msg("duration resolved")
			return Result{Duration: d, Source: s.Name()}
		}

		outcome := metrics.OutcomeError
		if errors.Is(err, ErrNoDuration) {
			outcome = metrics.OutcomeMiss
		}
		metrics.RecordDurationLookup(s.Name(), outcome)
		r.logger.Debug().Err(err).
			Str(logging.FieldAssetID, assetID).
			Str(logging.FieldSource, s.Name()).
			Msg("duration source failed, trying next")
	}

	metrics.RecordDurationLookup(SourcePlaceholder, metrics.OutcomePlaceholder)
	r.logger.Warn().
		Str(logging.FieldAssetID, assetID).
		Float64(logging.FieldDuration, r.placeholder).
		Msg("no source reported a duration, using placeholder")
	return Result{Duration: r.placeholder, Source: SourcePlaceholder, Placeholder: true}
}

func (r *Resolver) try(ctx context.Context, s Source, assetID string) (float64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return s.Duration(ctx, assetID)
}
