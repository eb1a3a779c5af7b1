package ufc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/htmlutil"
	"upset-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Rankings scrapes the divisional ladders. Passing a division filters
// to that ladder by case-insensitive name match, an unknown division
// returns an empty slice. Champions come back with rank zero ahead of
// the numbered contenders.
func (c *Client) Rankings(ctx context.Context, division string) ([]fightdata.Fighter, error) {
	ctx, span := tracer.Start(ctx, "Rankings", trace.WithAttributes(
		attribute.String("division", division),
	))
	defer span.End()

	doc, err := c.fetchPage(ctx, "/rankings")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch rankings page")
		return nil, err
	}

	groups, ok := htmlutil.Fallback(ctx, doc.Selection, 1, rankingGroupStrategies...)
	if !ok {
		err = fmt.Errorf("ranking groups: %w", ErrNoMatches)
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not locate ranking groups")
		return nil, err
	}

	fighters := []fightdata.Fighter{}
	groups.Selection.Each(func(_ int, group *goquery.Selection) {
		header := textutil.CollapseWhitespace(group.Find(".view-grouping-header").First().Text())
		weightClass := strings.TrimSuffix(header, " Top Rank")
		if weightClass == "" {
			return
		}
		// pound-for-pound ladders rank across divisions, carrying them
		// as a weight class would overwrite divisional ranks on upsert
		if textutil.MatchName(weightClass, []string{"pound-for-pound"}) {
			return
		}
		if division != "" && !strings.EqualFold(weightClass, division) {
			return
		}

		// the champion sits in a callout above the numbered table
		champion := group.Find(".rankings--athlete--champion a[href*='/athlete/']").First()
		if champion.Length() > 0 {
			rank := 0
			fighter, keep := normalizeFighter(ctx, rawFighter{
				href:        champion.AttrOr("href", ""),
				name:        champion.Text(),
				weightClass: weightClass,
				ranking:     &rank,
			})
			if keep {
				fighters = append(fighters, fighter)
			}
		}

		group.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			rankText := textutil.CollapseWhitespace(tr.Find("td").First().Text())
			rank, err := strconv.Atoi(rankText)
			if err != nil {
				skipRow(ctx, "ranking", skipMissingRank)
				return
			}

			link := tr.Find("a[href*='/athlete/']").First()
			fighter, keep := normalizeFighter(ctx, rawFighter{
				href:        link.AttrOr("href", ""),
				name:        link.Text(),
				weightClass: weightClass,
				ranking:     &rank,
			})
			if keep {
				fighters = append(fighters, fighter)
			}
		})
	})

	span.SetAttributes(attribute.Int("fighters", len(fighters)))
	return fighters, nil
}
