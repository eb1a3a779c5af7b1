package ufc

import (
	"context"
	"strings"
	"time"

	"upset-backend/lib/fightdata"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const healthProbePath = "/events"

// HealthCheck probes the events listing with the short-leash fetcher
// and reports one of three states: unhealthy when the fetch itself
// fails, degraded when the page came back but no longer looks like an
// events page, healthy otherwise. The probe bypasses the rate limiter
// so a saturated scrape window can't make the source look down.
func (c *Client) HealthCheck(ctx context.Context) fightdata.HealthStatus {
	ctx, span := tracer.Start(ctx, "HealthCheck")
	defer span.End()

	start := time.Now()
	body, err := c.healthFetcher.Fetch(ctx, healthProbePath)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "health probe fetch failed")
		return fightdata.HealthStatus{
			Status:    fightdata.Unhealthy,
			LatencyMs: latency,
			Error:     err.Error(),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "health probe parse failed")
		return fightdata.HealthStatus{
			Status:    fightdata.Degraded,
			LatencyMs: latency,
			CanFetch:  true,
			Error:     err.Error(),
		}
	}

	matches := healthProbeStrategy.Select(doc.Selection).Length()
	span.SetAttributes(
		attribute.Int("probe_matches", matches),
		attribute.Int64("latency_ms", latency),
	)
	if matches == 0 {
		return fightdata.HealthStatus{
			Status:    fightdata.Degraded,
			LatencyMs: latency,
			CanFetch:  true,
			Error:     "page fetched but no event links recognized",
		}
	}

	return fightdata.HealthStatus{
		Status:    fightdata.Healthy,
		LatencyMs: latency,
		CanFetch:  true,
		CanParse:  true,
	}
}
