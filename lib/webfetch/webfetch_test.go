package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"upset-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func noSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

var cardBody = "<html><body>" + strings.Repeat("<div class='c-listing-fight'>fight</div>", 10) + "</body></html>"

func TestFetchSuccessReturnsRawBody(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webfetch")
	defer cleanup()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cardBody))
	}))
	defer ts.Close()

	var delays []time.Duration
	fetcher, err := NewFetcher(Options{
		BaseUrl:   ts.URL,
		BaseDelay: time.Millisecond * 10,
		Sleep:     noSleep(&delays),
	})
	require.NoError(t, err)

	body, err := fetcher.Fetch(context.Background(), "/events")
	require.NoError(t, err)
	require.Equal(t, cardBody, body)
	// only the courtesy delay before the single attempt
	require.Equal(t, []time.Duration{time.Millisecond * 10}, delays)
}

func TestFetchBackoffProgression(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webfetch")
	defer cleanup()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	var delays []time.Duration
	fetcher, err := NewFetcher(Options{
		BaseUrl:   ts.URL,
		Retries:   4,
		BaseDelay: time.Millisecond * 10,
		Sleep:     noSleep(&delays),
	})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "/events")
	require.Error(t, err)

	var terminal *Error
	require.ErrorAs(t, err, &terminal)
	require.Equal(t, 4, terminal.Attempts)

	var status StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusServiceUnavailable, status.Code)

	// courtesy delay, then doubling from the third attempt on
	require.Equal(t, []time.Duration{
		time.Millisecond * 10,
		time.Millisecond * 10,
		time.Millisecond * 20,
		time.Millisecond * 40,
	}, delays)
}

func TestFetchRecoversWithinBudget(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webfetch")
	defer cleanup()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(cardBody))
	}))
	defer ts.Close()

	var delays []time.Duration
	fetcher, err := NewFetcher(Options{
		BaseUrl:   ts.URL,
		BaseDelay: time.Millisecond * 10,
		Sleep:     noSleep(&delays),
	})
	require.NoError(t, err)

	body, err := fetcher.Fetch(context.Background(), "/events")
	require.NoError(t, err)
	require.Equal(t, cardBody, body)
	require.Equal(t, int32(2), hits.Load())
	require.Equal(t, []time.Duration{
		time.Millisecond * 10,
		time.Millisecond * 10,
	}, delays)
}

func TestFetchTimeoutCountsAsAttempt(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webfetch")
	defer cleanup()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond * 300)
		w.Write([]byte(cardBody))
	}))
	defer ts.Close()

	var delays []time.Duration
	fetcher, err := NewFetcher(Options{
		BaseUrl:   ts.URL,
		Retries:   2,
		BaseDelay: time.Millisecond,
		Timeout:   time.Millisecond * 30,
		Sleep:     noSleep(&delays),
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = fetcher.Fetch(context.Background(), "/events")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTimeout)

	var terminal *Error
	require.ErrorAs(t, err, &terminal)
	require.Equal(t, 2, terminal.Attempts)
	// two time-boxed attempts, never an indefinite hang
	require.Less(t, time.Since(start), time.Second*2)
}

func TestFetchRejectsShortBody(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webfetch")
	defer cleanup()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	var delays []time.Duration
	fetcher, err := NewFetcher(Options{
		BaseUrl:      ts.URL,
		Retries:      2,
		BaseDelay:    time.Millisecond,
		MinBodyBytes: 100,
		Sleep:        noSleep(&delays),
	})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "/events")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrShortBody)
}

func TestFetchStopsWhenContextCancelled(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webfetch")
	defer cleanup()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher, err := NewFetcher(Options{
		BaseUrl:   ts.URL,
		BaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = fetcher.Fetch(ctx, "/events")
	require.ErrorIs(t, err, context.Canceled)
}
