package ufc

import (
	"upset-backend/lib/htmlutil"
)

// Ordered extraction strategies per entity kind, most specific first.
// Upstream renames classes and shuffles wrappers a few times a year,
// the later entries survive those incremental changes long enough to
// avoid an emergency redeploy. Never reorder casually: the extractor
// commits to the first strategy that meets its match threshold.

var upcomingPaneStrategies = []htmlutil.Strategy{
	htmlutil.Query("tab-pane", "#events-list-upcoming"),
	htmlutil.Query("data-tab", "[data-tab='upcoming']"),
}

var pastPaneStrategies = []htmlutil.Strategy{
	htmlutil.Query("tab-pane", "#events-list-past"),
	htmlutil.Query("data-tab", "[data-tab='past']"),
}

var eventRowStrategies = []htmlutil.Strategy{
	htmlutil.Query("result-card", ".c-card-event--result"),
	htmlutil.Query("listing-article", ".l-listing__item article"),
	htmlutil.Query("event-link", "a[href*='/event/']"),
}

var fightRowStrategies = []htmlutil.Strategy{
	htmlutil.Query("listing-fight", ".c-listing-fight"),
	htmlutil.Query("listing-item", ".l-listing__group .l-listing__item"),
	htmlutil.Query("legacy-row", "ul.fight-listing > li"),
}

// needs at least two matches per row, one per corner
var fighterLinkStrategies = []htmlutil.Strategy{
	htmlutil.Query("corner-name", ".c-listing-fight__corner-name a"),
	htmlutil.Query("athlete-link", "a[href*='/athlete/']"),
}

var athleteRowStrategies = []htmlutil.Strategy{
	htmlutil.Query("flipcard", ".c-listing-athlete-flipcard__front"),
	htmlutil.Query("athlete-card", ".c-listing-athlete"),
}

var rankingGroupStrategies = []htmlutil.Strategy{
	htmlutil.Query("view-grouping", ".view-grouping"),
	htmlutil.Query("rankings-group", ".rankings-group"),
}

// the health check probes with the most permissive strategy only, it
// answers "does anything on the page still look like an event" rather
// than "is the full pipeline intact"
var healthProbeStrategy = htmlutil.Query("event-link", "a[href*='/event/']")
