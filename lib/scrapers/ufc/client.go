// Package ufc scrapes ufc.com into the canonical fightdata model. The
// site has no public JSON api, everything comes off the html pages, so
// every accessor layers rate limiting, resilient fetching and
// fallback-based extraction.
package ufc

import (
	"context"
	"errors"
	"strings"
	"time"
	"upset-backend/lib/fightdata"
	"upset-backend/lib/ratelimit"
	"upset-backend/lib/timezone"
	"upset-backend/lib/webfetch"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/ufc")

const DEFAULT_BASE_URL = "https://www.ufc.com"
const DEFAULT_MAX_REQUESTS = 30
const DEFAULT_WINDOW = time.Minute

// ErrNoMatches reports that a page fetched fine but none of the
// extraction strategies found its rows, which usually means the markup
// changed shape.
var ErrNoMatches = errors.New("page matched no extraction strategies")

type ClientOptions struct {
	// defaults to the public site
	BaseUrl string
	// identity requests are counted under by the rate limiter
	Identity string
	// request ceiling per window, defaults to 30 per minute
	MaxRequests int
	Window      time.Duration
	Fetch       webfetch.Options
}

type Client struct {
	opts    ClientOptions
	fetcher *webfetch.Fetcher
	// the health check keeps its own short-leash fetcher so a probe
	// can't burn the full retry budget
	healthFetcher *webfetch.Fetcher
	limiter       *ratelimit.Limiter
	now           func() time.Time
}

var _ fightdata.Provider = (*Client)(nil)

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DEFAULT_BASE_URL
	}
	if opts.Identity == "" {
		opts.Identity = "upset-ingest"
	}
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = DEFAULT_MAX_REQUESTS
	}
	if opts.Window <= 0 {
		opts.Window = DEFAULT_WINDOW
	}

	fetchOpts := opts.Fetch
	fetchOpts.BaseUrl = opts.BaseUrl
	if fetchOpts.InstrumentOutput == nil {
		fetchOpts.InstrumentOutput = restyInstrumentOutput
	}
	fetcher, err := webfetch.NewFetcher(fetchOpts)
	if err != nil {
		return nil, err
	}

	healthOpts := fetchOpts
	healthOpts.Retries = 1
	healthOpts.BaseDelay = time.Millisecond * 50
	healthOpts.Timeout = time.Second * 5
	healthFetcher, err := webfetch.NewFetcher(healthOpts)
	if err != nil {
		return nil, err
	}

	return &Client{
		opts:          opts,
		fetcher:       fetcher,
		healthFetcher: healthFetcher,
		limiter:       ratelimit.New(ctx, ratelimit.Options{}),
		now:           timezone.Now,
	}, nil
}

// fetchPage gates one page retrieval behind the rate limiter and
// parses the result. Rate-limit denial surfaces as
// ratelimit.DeniedError so callers can tell "wait" apart from
// "broken".
func (c *Client) fetchPage(ctx context.Context, path string) (*goquery.Document, error) {
	res := c.limiter.Check(ctx, c.opts.Identity, c.opts.MaxRequests, c.opts.Window)
	if !res.Allowed {
		return nil, ratelimit.DeniedError{
			Identifier:        c.opts.Identity,
			RetryAfterSeconds: res.RetryAfterSeconds,
		}
	}

	body, err := c.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
