package ufc

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/htmlutil"
	"upset-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (c *Client) EventFightCard(ctx context.Context, eventId string) ([]fightdata.Fight, error) {
	ctx, span := tracer.Start(ctx, "EventFightCard", trace.WithAttributes(
		attribute.String("event_id", eventId),
	))
	defer span.End()

	doc, err := c.fetchPage(ctx, "/event/"+url.PathEscape(eventId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event page")
		return nil, err
	}

	rows, ok := htmlutil.Fallback(ctx, doc.Selection, 1, fightRowStrategies...)
	if !ok {
		err = fmt.Errorf("fight rows for event %q: %w", eventId, ErrNoMatches)
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not locate fight rows")
		return nil, err
	}

	// order index mirrors row position on the page, index zero is the
	// main event. Skipped rows leave gaps instead of renumbering the
	// rest of the card.
	fights := []fightdata.Fight{}
	rows.Selection.Each(func(i int, row *goquery.Selection) {
		raw, ok := c.extractFightRow(ctx, row, eventId, i)
		if !ok {
			return
		}
		fight, keep := normalizeFight(ctx, raw)
		if keep {
			fights = append(fights, fight)
		}
	})

	span.SetAttributes(attribute.Int("fights", len(fights)))
	return fights, nil
}

func (c *Client) extractFightRow(
	ctx context.Context,
	row *goquery.Selection,
	eventId string,
	order int,
) (rawFight, bool) {
	links, ok := htmlutil.Fallback(ctx, row, 2, fighterLinkStrategies...)
	if !ok {
		skipRow(ctx, "fight", skipMissingCorner)
		return rawFight{}, false
	}
	anchors := htmlutil.GetAnchors(ctx, links.Selection)
	if len(anchors) < 2 {
		skipRow(ctx, "fight", skipMissingCorner)
		return rawFight{}, false
	}

	weightClass := row.Find(".c-listing-fight__class-text").First().Text()
	if weightClass == "" {
		weightClass = row.Find("[class*='weight-class']").First().Text()
	}

	raw := rawFight{
		eventId:     eventId,
		fmid:        row.AttrOr("data-fmid", ""),
		order:       order,
		cornerA:     rawCorner{href: anchors[0].Href, name: anchors[0].Name},
		cornerB:     rawCorner{href: anchors[1].Href, name: anchors[1].Name},
		weightClass: weightClass,
		outcomeA:    row.Find(".c-listing-fight__corner-body--red [class*='c-listing-fight__outcome']").First().Text(),
		outcomeB:    row.Find(".c-listing-fight__corner-body--blue [class*='c-listing-fight__outcome']").First().Text(),
	}

	// resolved fights carry labeled result blocks, unresolved ones
	// simply don't render them
	row.Find(".c-listing-fight__result").Each(func(_ int, block *goquery.Selection) {
		label := strings.ToLower(textutil.CollapseWhitespace(
			block.Find(".c-listing-fight__result-label").Text(),
		))
		text := block.Find(".c-listing-fight__result-text").Text()
		switch label {
		case "method":
			raw.methodText = text
		case "round", "rnd":
			raw.roundText = text
		case "time":
			raw.timeText = text
		}
	})

	return raw, true
}

// FightResult resolves one fight by its composite identifier. A fight
// that dropped off the card between syncs is a nil result, not an
// error, only transport and extraction failures propagate.
func (c *Client) FightResult(ctx context.Context, fightId string) (*fightdata.Fight, error) {
	ctx, span := tracer.Start(ctx, "FightResult", trace.WithAttributes(
		attribute.String("fight_id", fightId),
	))
	defer span.End()

	eventId, _, found := strings.Cut(fightId, ":")
	if !found || eventId == "" {
		err := fmt.Errorf("malformed fight id %q", fightId)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed fight id")
		return nil, err
	}

	fights, err := c.EventFightCard(ctx, eventId)
	if err != nil {
		return nil, err
	}
	for _, fight := range fights {
		if fight.ExternalId == fightId {
			return &fight, nil
		}
	}

	span.AddEvent("fight not on card")
	return nil, nil
}
