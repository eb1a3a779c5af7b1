package ufc

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"upset-backend/lib/dateutil"
	"upset-backend/lib/fightdata"
	"upset-backend/lib/textutil"
	"upset-backend/lib/timezone"
)

// reason codes attached to rows dropped during normalization
const (
	skipMissingId      = "missing_external_id"
	skipMissingName    = "missing_name"
	skipMissingCorner  = "missing_corner"
	skipMissingRank    = "missing_rank"
	skipWinnerNoMethod = "winner_without_method"
)

func skipRow(ctx context.Context, entity, reason string) {
	slog.WarnContext(
		ctx, "dropped row during normalization",
		"entity", entity,
		"reason", reason,
	)
}

// externalIdFromUrl derives a stable upstream key from the trailing
// path segment of a page url, display names can change but slugs
// don't.
func externalIdFromUrl(href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

// how long after its start time an event still counts as in progress
const LIVE_WINDOW = time.Hour * 6

type rawEvent struct {
	href      string
	name      string
	dateText  string
	timestamp string
	location  string
	// true when the row came out of the past-events pane
	past bool
}

func normalizeEvent(ctx context.Context, raw rawEvent, now time.Time) (fightdata.Event, bool) {
	id := externalIdFromUrl(raw.href)
	if id == "" {
		skipRow(ctx, "event", skipMissingId)
		return fightdata.Event{}, false
	}
	name := textutil.CollapseWhitespace(raw.name)
	if name == "" {
		skipRow(ctx, "event", skipMissingName)
		return fightdata.Event{}, false
	}

	var date *time.Time
	if raw.timestamp != "" {
		unix, err := strconv.ParseInt(strings.TrimSpace(raw.timestamp), 10, 64)
		if err == nil {
			t := time.Unix(unix, 0).In(timezone.Location)
			date = &t
		}
	}
	if date == nil {
		if t, ok := dateutil.Parse(raw.dateText); ok {
			date = &t
		}
	}

	// a missing date must never drop the event, it just stays upcoming
	status := fightdata.EventUpcoming
	switch {
	case raw.past:
		status = fightdata.EventCompleted
	case date != nil && date.Before(now):
		if now.Sub(*date) <= LIVE_WINDOW {
			status = fightdata.EventLive
		} else {
			status = fightdata.EventCompleted
		}
	}

	return fightdata.Event{
		ExternalId: id,
		Name:       name,
		Date:       date,
		Location:   textutil.CollapseWhitespace(raw.location),
		Status:     status,
	}, true
}

type rawCorner struct {
	href string
	name string
}

type rawFight struct {
	eventId string
	// upstream's own fight id when the page carries one
	fmid        string
	order       int
	cornerA     rawCorner
	cornerB     rawCorner
	weightClass string
	outcomeA    string
	outcomeB    string
	methodText  string
	roundText   string
	timeText    string
}

func normalizeCorner(raw rawCorner) (fightdata.Corner, bool) {
	id := externalIdFromUrl(raw.href)
	name := textutil.CollapseWhitespace(raw.name)
	if id == "" || name == "" {
		return fightdata.Corner{}, false
	}
	return fightdata.Corner{ExternalId: id, Name: name}, true
}

func fightExternalId(raw rawFight, cornerA, cornerB fightdata.Corner) string {
	if raw.fmid != "" {
		return raw.eventId + ":" + raw.fmid
	}
	// composite fallback, still deterministic across runs
	return raw.eventId + ":" + cornerA.ExternalId + "-vs-" + cornerB.ExternalId
}

func normalizeOutcome(outcomeA, outcomeB string) fightdata.Winner {
	a := strings.ToLower(textutil.CollapseWhitespace(outcomeA))
	b := strings.ToLower(textutil.CollapseWhitespace(outcomeB))
	switch {
	case a == "win":
		return fightdata.WinnerCornerA
	case b == "win":
		return fightdata.WinnerCornerB
	case a == "draw" || b == "draw":
		return fightdata.WinnerDraw
	case strings.Contains(a, "no contest") || strings.Contains(b, "no contest"):
		return fightdata.WinnerNoContest
	}
	return ""
}

// win method buckets, matched in order against the lowercased text,
// first hit wins. labels naming two families, like "TKO (Submission
// to Punches)", land in the earliest bucket.
var methodBuckets = []struct {
	patterns []string
	method   fightdata.Method
}{
	{[]string{"submission", "sub", "choke", "tapout"}, fightdata.MethodSubmission},
	{[]string{"decision", "dec"}, fightdata.MethodDecision},
	{[]string{"tko", "knockout", "ko"}, fightdata.MethodKnockout},
}

func classifyMethod(text string) fightdata.Method {
	cleaned := strings.ToLower(textutil.CollapseWhitespace(text))
	if cleaned == "" {
		return ""
	}
	for _, bucket := range methodBuckets {
		for _, pattern := range bucket.patterns {
			if strings.Contains(cleaned, pattern) {
				return bucket.method
			}
		}
	}
	return fightdata.MethodOther
}

func normalizeFight(ctx context.Context, raw rawFight) (fightdata.Fight, bool) {
	cornerA, okA := normalizeCorner(raw.cornerA)
	cornerB, okB := normalizeCorner(raw.cornerB)
	if !okA || !okB {
		skipRow(ctx, "fight", skipMissingCorner)
		return fightdata.Fight{}, false
	}

	winner := normalizeOutcome(raw.outcomeA, raw.outcomeB)
	method := classifyMethod(raw.methodText)
	if winner != "" && method == "" {
		// a winner with no method is an incomplete result, partial
		// records are worse downstream than a row the next run can
		// recover
		skipRow(ctx, "fight", skipWinnerNoMethod)
		return fightdata.Fight{}, false
	}

	round := 0
	if r, err := strconv.Atoi(strings.TrimSpace(raw.roundText)); err == nil {
		round = r
	}

	return fightdata.Fight{
		ExternalId:      fightExternalId(raw, cornerA, cornerB),
		EventExternalId: raw.eventId,
		OrderIndex:      raw.order,
		CornerA:         cornerA,
		CornerB:         cornerB,
		WeightClass:     textutil.CollapseWhitespace(raw.weightClass),
		Winner:          winner,
		Method:          method,
		MethodText:      textutil.CollapseWhitespace(raw.methodText),
		Round:           round,
		Time:            textutil.CollapseWhitespace(raw.timeText),
	}, true
}

type rawFighter struct {
	href        string
	name        string
	nickname    string
	recordText  string
	weightClass string
	imageUrl    string
	ranking     *int
}

var recordRegex = regexp.MustCompile(`(\d+)-(\d+)-(\d+)(?:\s*\((\d+)\s*NC\))?`)

func parseRecord(text string) fightdata.Record {
	groups := recordRegex.FindStringSubmatch(text)
	if len(groups) < 4 {
		return fightdata.Record{}
	}
	wins, _ := strconv.Atoi(groups[1])
	losses, _ := strconv.Atoi(groups[2])
	draws, _ := strconv.Atoi(groups[3])
	record := fightdata.Record{Wins: wins, Losses: losses, Draws: draws}
	if groups[4] != "" {
		record.NoContests, _ = strconv.Atoi(groups[4])
	}
	return record
}

func normalizeFighter(ctx context.Context, raw rawFighter) (fightdata.Fighter, bool) {
	id := externalIdFromUrl(raw.href)
	if id == "" {
		skipRow(ctx, "fighter", skipMissingId)
		return fightdata.Fighter{}, false
	}
	name := textutil.CollapseWhitespace(raw.name)
	if name == "" {
		skipRow(ctx, "fighter", skipMissingName)
		return fightdata.Fighter{}, false
	}

	nickname := textutil.CollapseWhitespace(raw.nickname)
	nickname = strings.Trim(nickname, `"“”`)

	return fightdata.Fighter{
		ExternalId:  id,
		Name:        name,
		Nickname:    nickname,
		Record:      parseRecord(raw.recordText),
		WeightClass: textutil.CollapseWhitespace(raw.weightClass),
		Ranking:     raw.ranking,
		ImageUrl:    strings.TrimSpace(raw.imageUrl),
	}, true
}
