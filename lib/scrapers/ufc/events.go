package ufc

import (
	"context"
	"fmt"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (c *Client) UpcomingEvents(ctx context.Context) ([]fightdata.Event, error) {
	ctx, span := tracer.Start(ctx, "UpcomingEvents")
	defer span.End()

	doc, err := c.fetchPage(ctx, "/events")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch events page")
		return nil, err
	}

	pane, ok := htmlutil.Fallback(ctx, doc.Selection, 1, upcomingPaneStrategies...)
	if !ok {
		err = fmt.Errorf("upcoming events pane: %w", ErrNoMatches)
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not locate upcoming pane")
		return nil, err
	}

	events, err := c.collectEvents(ctx, pane.Selection, false, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract upcoming events")
		return nil, err
	}
	span.SetAttributes(attribute.Int("events", len(events)))
	return events, nil
}

func (c *Client) CompletedEvents(ctx context.Context, limit int) ([]fightdata.Event, error) {
	ctx, span := tracer.Start(ctx, "CompletedEvents", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	doc, err := c.fetchPage(ctx, "/events")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch events page")
		return nil, err
	}

	pane, ok := htmlutil.Fallback(ctx, doc.Selection, 1, pastPaneStrategies...)
	if !ok {
		err = fmt.Errorf("past events pane: %w", ErrNoMatches)
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not locate past pane")
		return nil, err
	}

	events, err := c.collectEvents(ctx, pane.Selection, true, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract past events")
		return nil, err
	}
	span.SetAttributes(attribute.Int("events", len(events)))
	return events, nil
}

// collectEvents pulls event rows out of one listing pane. A pane with
// zero recognizable rows is treated as markup drift, not as an empty
// schedule, so it surfaces as an error rather than a silent nil.
func (c *Client) collectEvents(
	ctx context.Context,
	pane *goquery.Selection,
	past bool,
	limit int,
) ([]fightdata.Event, error) {
	rows, ok := htmlutil.Fallback(ctx, pane, 1, eventRowStrategies...)
	if !ok {
		return nil, fmt.Errorf("event rows: %w", ErrNoMatches)
	}

	now := c.now()
	events := []fightdata.Event{}
	rows.Selection.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if limit > 0 && len(events) >= limit {
			return false
		}

		// the image anchor precedes the headline in markup order and
		// carries no text, so prefer the headline anchor explicitly
		link := row.Find(".c-card-event--result__headline a").First()
		if link.Length() == 0 {
			link = row.Find("a[href*='/event/']").First()
		}
		if link.Length() == 0 && row.Is("a[href*='/event/']") {
			// the last-resort strategy matches the anchors themselves
			link = row
		}
		anchors := htmlutil.GetAnchors(ctx, link)
		if len(anchors) == 0 {
			skipRow(ctx, "event", skipMissingId)
			return true
		}

		date := row.Find(".c-card-event--result__date").First()
		event, keep := normalizeEvent(ctx, rawEvent{
			href:      anchors[0].Href,
			name:      anchors[0].Name,
			dateText:  date.Text(),
			timestamp: date.AttrOr("data-main-card-timestamp", ""),
			location:  row.Find(".c-card-event--result__location").First().Text(),
			past:      past,
		}, now)
		if keep {
			events = append(events, event)
		}
		return true
	})
	return events, nil
}
