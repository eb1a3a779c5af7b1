package htmlutil

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// a named way of locating elements in a document, upstream markup
// changes are absorbed by listing several of these in priority order
type Strategy struct {
	Name   string
	Select func(root *goquery.Selection) *goquery.Selection
}

func Query(name, selector string) Strategy {
	return Strategy{
		Name: name,
		Select: func(root *goquery.Selection) *goquery.Selection {
			return root.Find(selector)
		},
	}
}

type Match struct {
	Selection *goquery.Selection
	// name of the strategy that produced the selection
	Strategy string
	// position of the strategy in the list it was chosen from,
	// anything above zero means a fallback was needed
	Index int
}

// Fallback evaluates strategies in order and commits to the first one
// matching at least minMatches elements. Strategies after the committed
// one are never evaluated and matches are never merged across
// strategies. Returns false if every strategy comes up short.
func Fallback(ctx context.Context, root *goquery.Selection, minMatches int, strategies ...Strategy) (Match, bool) {
	ctx, span := tracer.Start(ctx, "Fallback")
	defer span.End()

	if minMatches < 1 {
		minMatches = 1
	}

	for i, strat := range strategies {
		matched := strat.Select(root)
		count := matched.Length()
		span.AddEvent("strategy", trace.WithAttributes(
			attribute.String("name", strat.Name),
			attribute.Int("index", i),
			attribute.Int("matches", count),
		))
		if count < minMatches {
			continue
		}

		span.SetAttributes(attribute.String("committed", strat.Name))
		if i > 0 {
			slog.WarnContext(
				ctx, "primary extraction strategy missed, fell back",
				"strategy", strat.Name,
				"index", i,
			)
		}
		return Match{
			Selection: matched,
			Strategy:  strat.Name,
			Index:     i,
		}, true
	}

	span.SetStatus(codes.Error, "extraction strategies exhausted")
	slog.ErrorContext(
		ctx, "extraction strategies exhausted",
		"strategies", len(strategies),
		"min_matches", minMatches,
	)
	return Match{Index: -1}, false
}
