package adapter

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/loungewatch/loungewatch/internal/config"
	"github.com/loungewatch/loungewatch/pkg/types"
)

const (
	defaultFetchTimeout = 10 * time.Second

	// maxBodySize caps how much of a feed response is read.
	maxBodySize = 5 * 1024 * 1024
)

// Result is the outcome of one fetch against a single feed.
type Result struct {
	SourceID   string
	SourceType string
	FetchedAt  time.Time
	Duration   time.Duration

	// Records is empty whenever Err is set.
	Records []types.Record

	// Err is non-nil if the fetch failed (connectivity, status, parse).
	// A feed that answered with no venues has a nil Err and no records.
	Err error
}

// Adapter fetches one remote feed and normalizes it into records.
// Fetch never returns an error to the caller; failures land in Result.Err.
type Adapter interface {
	ID() string
	Type() string
	Endpoint() string
	Fetch(ctx context.Context) *Result
}

// Options tune the HTTP client shared by an adapter's fetches.
type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// parseFunc turns a feed body into records.
type parseFunc func(body []byte) ([]types.Record, error)

var parsers = map[string]parseFunc{
	config.TypeOriental: parseOriental,
	config.TypeJIS:      parseJIS,
	config.TypeXIX:      parseXIX,
	config.TypeAlfa:     parseAlfa,
	config.TypeYatakoi:  parseYatakoi,
}

// New returns the Adapter for src.Type. It builds the HTTP client once and
// reuses it across fetches.
func New(src config.Source, opts Options) (Adapter, error) {
	parse, ok := parsers[src.Type]
	if !ok {
		return nil, fmt.Errorf("adapter: unsupported type %q", src.Type)
	}
	return &feed{
		src:    src,
		client: buildHTTPClient(src, opts),
		parse:  parse,
		now:    time.Now,
	}, nil
}

// NewAll builds adapters for every source, preserving order.
func NewAll(srcs []config.Source, opts Options) ([]Adapter, error) {
	out := make([]Adapter, 0, len(srcs))
	for _, src := range srcs {
		a, err := New(src, opts)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// feed is the Adapter implementation shared by every feed type; only the
// parse step differs.
type feed struct {
	src    config.Source
	client *http.Client
	parse  parseFunc
	now    func() time.Time
}

func (f *feed) ID() string       { return f.src.ID }
func (f *feed) Type() string     { return f.src.Type }
func (f *feed) Endpoint() string { return f.src.Endpoint }

func (f *feed) Fetch(ctx context.Context) *Result {
	start := f.now()
	res := &Result{
		SourceID:   f.src.ID,
		SourceType: f.src.Type,
		FetchedAt:  start.UTC(),
		Records:    []types.Record{},
	}

	recs, err := f.fetch(ctx)
	res.Duration = f.now().Sub(start)
	if err != nil {
		slog.Warn("adapter: fetch failed",
			"source", f.src.ID, "type", f.src.Type, "err", err)
		res.Err = err
		return res
	}
	for i := range recs {
		recs[i].Source = f.src.Type
	}
	res.Records = recs
	return res
}

func (f *feed) fetch(ctx context.Context) ([]types.Record, error) {
	body, err := fetchBody(ctx, f.client, f.src.Endpoint)
	if err != nil {
		return nil, err
	}
	recs, err := f.parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.src.Type, err)
	}
	if recs == nil {
		recs = []types.Record{}
	}
	return recs, nil
}

// userAgentRoundTripper stamps the configured User-Agent on every request.
type userAgentRoundTripper struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the source's TLS settings.
func buildHTTPClient(src config.Source, opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	transport := &userAgentRoundTripper{
		base: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
			},
		},
		userAgent: opts.UserAgent,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// fetchBody performs an HTTP GET to url and returns the size-limited body.
func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response exceeds %d bytes", maxBodySize)
	}
	return body, nil
}
