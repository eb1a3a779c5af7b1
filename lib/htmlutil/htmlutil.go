package htmlutil

import (
	"context"
	"net/url"
	"strings"

	"upset-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("upset.lib.htmlutil")

// GetText concatenates every text node under node, markup stripped.
func GetText(node *html.Node) string {
	var out strings.Builder
	appendText(&out, node)
	return out.String()
}

func appendText(out *strings.Builder, node *html.Node) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		out.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		appendText(out, child)
	}
}

// Anchor is a link pulled out of a page, its display text cleaned of
// markup whitespace.
type Anchor struct {
	Name string
	Href string
}

func hrefAttr(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "href" {
			return a.Val
		}
	}
	return ""
}

// GetAnchors extracts a name/href pair from every node in sel. Nodes
// whose href does not parse as a url are skipped.
func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		link, err := url.Parse(hrefAttr(n))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		anchor := Anchor{
			Name: textutil.CollapseWhitespace(textutil.StripNonPrint(GetText(n))),
			Href: link.String(),
		}
		anchors = append(anchors, anchor)
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", anchor.Name),
			attribute.String("url", anchor.Href),
		))
	}

	return anchors
}
