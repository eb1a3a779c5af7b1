package webfetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"time"
	"upset-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("upset.lib.webfetch")

const DEFAULT_RETRIES = 3
const DEFAULT_BASE_DELAY = time.Millisecond * 500
const DEFAULT_TIMEOUT = time.Second * 10
const DEFAULT_MIN_BODY_BYTES = 64

const staticUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// ErrTimeout marks an attempt that exceeded its time box.
var ErrTimeout = errors.New("attempt timed out")

// ErrShortBody marks a response too small to be a real page.
var ErrShortBody = errors.New("response body below plausibility threshold")

type StatusError struct {
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Error is the terminal failure returned once the retry budget is
// spent. Callers must not retry on their own, the budget is owned
// here.
type Error struct {
	Url      string
	Attempts int
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf(
		"fetch %s: gave up after %d attempts: %s",
		e.Url, e.Attempts, e.Cause,
	)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type Options struct {
	BaseUrl string
	// total attempts made before giving up, defaults to 3
	Retries int
	// courtesy delay slept before the first attempt, after a failed
	// attempt it doubles for every further attempt, no jitter
	BaseDelay time.Duration
	// time box for each individual attempt
	Timeout time.Duration
	// bodies shorter than this count as failed attempts, weeds out
	// empty and placeholder pages
	MinBodyBytes int
	// impersonates a real browser at the transport level, needed in
	// production since the upstream site sits behind cloudflare
	BrowserBypass bool
	// overridable for tests
	Sleep func(ctx context.Context, d time.Duration) error
	// when set, full request/response dumps are written here
	InstrumentOutput restyutil.InstrumentOutput
}

type Fetcher struct {
	Http *resty.Client
	opts Options
}

func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.Retries <= 0 {
		opts.Retries = DEFAULT_RETRIES
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DEFAULT_BASE_DELAY
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DEFAULT_TIMEOUT
	}
	if opts.MinBodyBytes <= 0 {
		opts.MinBodyBytes = DEFAULT_MIN_BODY_BYTES
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	client := resty.New()
	if opts.BaseUrl != "" {
		baseUrl, err := url.Parse(opts.BaseUrl)
		if err != nil {
			return nil, err
		}
		client.SetBaseURL(opts.BaseUrl)
		client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	if opts.BrowserBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
		client.SetHeader("user-agent", browser.Chrome())
	} else {
		client.SetHeader("user-agent", staticUserAgent)
	}

	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	return &Fetcher{
		Http: client,
		opts: opts,
	}, nil
}

// Fetch retrieves the raw markup at target, retrying transient
// failures with exponential backoff until the attempt budget is spent.
// No parsing and no caching happens here, every call hits the network.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(
		attribute.String("url", target),
	))
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < f.opts.Retries; attempt++ {
		delay := f.opts.BaseDelay
		if attempt > 0 {
			delay = f.opts.BaseDelay * (1 << (attempt - 1))
		}
		err := f.opts.Sleep(ctx, delay)
		if err != nil {
			return "", err
		}

		body, err := f.attempt(ctx, target)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt+1))
			return body, nil
		}
		lastErr = err

		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("attempt", attempt+1),
			attribute.String("cause", err.Error()),
		))
		slog.WarnContext(
			ctx, "fetch attempt failed",
			"url", target,
			"attempt", attempt+1,
			"err", err,
		)
	}

	terminal := &Error{
		Url:      target,
		Attempts: f.opts.Retries,
		Cause:    lastErr,
	}
	span.RecordError(terminal)
	span.SetStatus(codes.Error, "retry budget exhausted")
	return "", terminal
}

func (f *Fetcher) attempt(ctx context.Context, target string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	res, err := f.Http.R().
		SetContext(attemptCtx).
		Get(target)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", ErrTimeout
		}
		return "", err
	}
	if !res.IsSuccess() {
		return "", StatusError{Code: res.StatusCode()}
	}

	body := res.String()
	if len(body) < f.opts.MinBodyBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrShortBody, len(body))
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
