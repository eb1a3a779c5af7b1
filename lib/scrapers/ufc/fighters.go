package ufc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/htmlutil"
	"upset-backend/lib/textutil"
	"upset-backend/lib/webfetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SearchFighters runs the athlete directory search and orders the hits
// by name similarity to the query. An empty result set is a legitimate
// answer, the directory renders no cards for unknown names.
func (c *Client) SearchFighters(ctx context.Context, query string, limit int) ([]fightdata.Fighter, error) {
	ctx, span := tracer.Start(ctx, "SearchFighters", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("limit", limit),
	))
	defer span.End()

	doc, err := c.fetchPage(ctx, "/athletes/all?search="+url.QueryEscape(query))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch athlete search page")
		return nil, err
	}

	rows, ok := htmlutil.Fallback(ctx, doc.Selection, 1, athleteRowStrategies...)
	if !ok {
		// no cards means no hits, not a broken page
		span.AddEvent("no athlete cards")
		return []fightdata.Fighter{}, nil
	}

	type scoredFighter struct {
		fighter fightdata.Fighter
		score   float64
	}
	scored := []scoredFighter{}
	needle := textutil.NormalizeName(query)

	rows.Selection.Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href*='/athlete/']").First()
		name := row.Find(".c-listing-athlete__name").First().Text()
		if textutil.CollapseWhitespace(name) == "" {
			name = link.Text()
		}

		fighter, keep := normalizeFighter(ctx, rawFighter{
			href:        link.AttrOr("href", ""),
			name:        name,
			nickname:    row.Find(".c-listing-athlete__nickname").First().Text(),
			recordText:  row.Find(".c-listing-athlete__record").First().Text(),
			weightClass: trimDivision(row.Find(".c-listing-athlete__title").First().Text()),
			imageUrl:    row.Find("img").First().AttrOr("src", ""),
		})
		if !keep {
			return
		}
		scored = append(scored, scoredFighter{
			fighter: fighter,
			score:   matchr.JaroWinkler(needle, textutil.NormalizeName(fighter.Name), false),
		})
	})

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	fighters := make([]fightdata.Fighter, 0, len(scored))
	for _, s := range scored {
		if limit > 0 && len(fighters) >= limit {
			break
		}
		fighters = append(fighters, s.fighter)
	}
	span.SetAttributes(attribute.Int("fighters", len(fighters)))
	return fighters, nil
}

var rankTagRegex = regexp.MustCompile(`#(\d+)`)

func (c *Client) FighterDetails(ctx context.Context, fighterId string) (*fightdata.Fighter, error) {
	ctx, span := tracer.Start(ctx, "FighterDetails", trace.WithAttributes(
		attribute.String("fighter_id", fighterId),
	))
	defer span.End()

	doc, err := c.fetchPage(ctx, "/athlete/"+url.PathEscape(fighterId))
	if err != nil {
		// a missing athlete page is an answer, not a failure
		var statusErr webfetch.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			span.AddEvent("athlete page not found")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch athlete page")
		return nil, err
	}

	name := doc.Find(".hero-profile__name").First().Text()
	if textutil.CollapseWhitespace(name) == "" {
		name = doc.Find("h1").First().Text()
	}
	if textutil.CollapseWhitespace(name) == "" {
		span.AddEvent("athlete page has no profile")
		return nil, nil
	}

	fighter, keep := normalizeFighter(ctx, rawFighter{
		href:        "/athlete/" + fighterId,
		name:        name,
		nickname:    doc.Find(".hero-profile__nickname").First().Text(),
		recordText:  doc.Find(".hero-profile__division-body").First().Text(),
		weightClass: trimDivision(doc.Find(".hero-profile__division-title").First().Text()),
		imageUrl:    doc.Find("img.hero-profile__image").First().AttrOr("src", ""),
		ranking:     parseRankTags(doc.Selection),
	})
	if !keep {
		return nil, nil
	}
	return &fighter, nil
}

// parseRankTags reads the profile tag pills. Champions are tagged
// "Title Holder" and map to rank zero, contender tags look like
// "#4 Lightweight". No tag means unranked.
func parseRankTags(doc *goquery.Selection) *int {
	var ranking *int
	doc.Find(".hero-profile__tag").EachWithBreak(func(_ int, tag *goquery.Selection) bool {
		text := textutil.CollapseWhitespace(tag.Text())
		if strings.EqualFold(text, "Title Holder") {
			rank := 0
			ranking = &rank
			return false
		}
		if ranking == nil {
			if m := rankTagRegex.FindStringSubmatch(text); m != nil {
				rank, err := strconv.Atoi(m[1])
				if err == nil {
					ranking = &rank
				}
			}
		}
		return true
	})
	return ranking
}

func trimDivision(s string) string {
	s = textutil.CollapseWhitespace(s)
	return strings.TrimSuffix(s, " Division")
}
