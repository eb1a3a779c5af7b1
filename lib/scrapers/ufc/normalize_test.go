package ufc

import (
	"context"
	"strconv"
	"testing"
	"time"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/telemetry"
	"upset-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestExternalIdFromUrl(t *testing.T) {
	cases := []struct {
		href string
		want string
	}{
		{"https://www.ufc.com/event/ufc-317", "ufc-317"},
		{"/event/ufc-317", "ufc-317"},
		{"/event/ufc-317/", "ufc-317"},
		{"/athlete/max-holloway?tab=bio", "max-holloway"},
		{"  /athlete/max-holloway  ", "max-holloway"},
		{"https://www.ufc.com/", ""},
		{"", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, externalIdFromUrl(c.href), "href %q", c.href)
	}
}

func TestClassifyMethod(t *testing.T) {
	cases := []struct {
		text string
		want fightdata.Method
	}{
		{"KO/TKO", fightdata.MethodKnockout},
		{"TKO - Doctor's Stoppage", fightdata.MethodKnockout},
		{"Submission", fightdata.MethodSubmission},
		// "choke" must classify as a submission even though the row
		// never says the word "submission"
		{"Rear Naked Choke", fightdata.MethodSubmission},
		{"Tapout", fightdata.MethodSubmission},
		{"Unanimous Decision", fightdata.MethodDecision},
		{"DEC", fightdata.MethodDecision},
		{"Disqualification", fightdata.MethodOther},
		{"Could Not Continue", fightdata.MethodOther},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, classifyMethod(c.text), "text %q", c.text)
	}
}

func TestNormalizeOutcome(t *testing.T) {
	require.Equal(t, fightdata.WinnerCornerA, normalizeOutcome("Win", "Loss"))
	require.Equal(t, fightdata.WinnerCornerB, normalizeOutcome("Loss", "Win"))
	require.Equal(t, fightdata.WinnerDraw, normalizeOutcome("Draw", "Draw"))
	require.Equal(t, fightdata.WinnerNoContest, normalizeOutcome("No Contest", "No Contest"))
	require.Equal(t, fightdata.Winner(""), normalizeOutcome("", ""))
}

func TestParseRecord(t *testing.T) {
	require.Equal(t, fightdata.Record{Wins: 26, Losses: 7, Draws: 0}, parseRecord("26-7-0 (W-L-D)"))
	require.Equal(
		t,
		fightdata.Record{Wins: 20, Losses: 4, Draws: 1, NoContests: 2},
		parseRecord("20-4-1 (2 NC)"),
	)
	require.Equal(t, fightdata.Record{}, parseRecord("record unavailable"))
	require.Equal(t, fightdata.Record{}, parseRecord(""))
}

func TestNormalizeEventStatus(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()
	ctx := context.Background()

	now := time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC)
	stamp := func(t time.Time) string {
		return strconv.FormatInt(t.Unix(), 10)
	}

	cases := []struct {
		name string
		raw  rawEvent
		want fightdata.EventStatus
	}{
		{
			name: "past pane is always completed",
			raw: rawEvent{
				href: "/event/ufc-316", name: "UFC 316", past: true,
				timestamp: stamp(now.Add(-time.Hour * 24 * 20)),
			},
			want: fightdata.EventCompleted,
		},
		{
			name: "started two hours ago counts as live",
			raw: rawEvent{
				href: "/event/ufc-317", name: "UFC 317",
				timestamp: stamp(now.Add(-time.Hour * 2)),
			},
			want: fightdata.EventLive,
		},
		{
			name: "live window closes after six hours",
			raw: rawEvent{
				href: "/event/ufc-317", name: "UFC 317",
				timestamp: stamp(now.Add(-time.Hour*6 - time.Minute)),
			},
			want: fightdata.EventCompleted,
		},
		{
			name: "future date stays upcoming",
			raw: rawEvent{
				href: "/event/ufc-318", name: "UFC 318",
				timestamp: stamp(now.Add(time.Hour * 24 * 7)),
			},
			want: fightdata.EventUpcoming,
		},
		{
			name: "unparseable date stays upcoming instead of dropping",
			raw: rawEvent{
				href: "/event/ufc-323", name: "UFC 323",
				dateText: "TBD",
			},
			want: fightdata.EventUpcoming,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			event, ok := normalizeEvent(ctx, c.raw, now)
			require.True(t, ok)
			require.Equal(t, c.want, event.Status)
			if c.raw.timestamp == "" && c.raw.dateText == "TBD" {
				require.Nil(t, event.Date)
			}
		})
	}
}

func TestNormalizeEventFallsBackToDateText(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()

	now := time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC)
	event, ok := normalizeEvent(context.Background(), rawEvent{
		href:     "/event/ufc-318",
		name:     "Holloway vs Poirier 3",
		dateText: "Main Card / Jul 19, 2025",
	}, now)
	require.True(t, ok)
	require.NotNil(t, event.Date)
	require.Equal(t, 2025, event.Date.Year())
	require.Equal(t, time.July, event.Date.Month())
	require.Equal(t, 19, event.Date.Day())
	require.Equal(t, fightdata.EventUpcoming, event.Status)
}

func TestNormalizeEventDropsWithoutIdentity(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()
	ctx := context.Background()
	now := timezone.Now()

	_, ok := normalizeEvent(ctx, rawEvent{name: "UFC 317"}, now)
	require.False(t, ok)

	_, ok = normalizeEvent(ctx, rawEvent{href: "/event/ufc-317"}, now)
	require.False(t, ok)
}

func TestNormalizeFightIds(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()
	ctx := context.Background()

	base := rawFight{
		eventId: "ufc-317",
		cornerA: rawCorner{href: "/athlete/ilia-topuria", name: "Ilia Topuria"},
		cornerB: rawCorner{href: "/athlete/charles-oliveira", name: "Charles Oliveira"},
	}

	withFmid := base
	withFmid.fmid = "12345"
	fight, ok := normalizeFight(ctx, withFmid)
	require.True(t, ok)
	require.Equal(t, "ufc-317:12345", fight.ExternalId)

	fight, ok = normalizeFight(ctx, base)
	require.True(t, ok)
	require.Equal(t, "ufc-317:ilia-topuria-vs-charles-oliveira", fight.ExternalId)
	require.Equal(t, "ufc-317", fight.EventExternalId)
}

func TestNormalizeFightDropsIncompleteResults(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()
	ctx := context.Background()

	raw := rawFight{
		eventId:  "ufc-317",
		cornerA:  rawCorner{href: "/athlete/ilia-topuria", name: "Ilia Topuria"},
		cornerB:  rawCorner{href: "/athlete/charles-oliveira", name: "Charles Oliveira"},
		outcomeA: "Win",
		outcomeB: "Loss",
	}

	// a declared winner with no method never reaches the caller
	_, ok := normalizeFight(ctx, raw)
	require.False(t, ok)

	raw.methodText = "KO/TKO"
	raw.roundText = "1"
	raw.timeText = "2:27"
	fight, ok := normalizeFight(ctx, raw)
	require.True(t, ok)
	require.Equal(t, fightdata.WinnerCornerA, fight.Winner)
	require.Equal(t, fightdata.MethodKnockout, fight.Method)
	require.Equal(t, "KO/TKO", fight.MethodText)
	require.Equal(t, 1, fight.Round)
	require.Equal(t, "2:27", fight.Time)
}

func TestNormalizeFightLeavesUnresolvedFightsOpen(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()

	fight, ok := normalizeFight(context.Background(), rawFight{
		eventId:     "ufc-317",
		cornerA:     rawCorner{href: "/athlete/beneil-dariush", name: "Beneil Dariush"},
		cornerB:     rawCorner{href: "/athlete/renato-moicano", name: "Renato Moicano"},
		weightClass: "Lightweight Bout",
	})
	require.True(t, ok)
	require.Equal(t, fightdata.Winner(""), fight.Winner)
	require.Equal(t, fightdata.Method(""), fight.Method)
	require.Equal(t, "", fight.MethodText)
	require.Equal(t, 0, fight.Round)
	require.Equal(t, "", fight.Time)
}

func TestNormalizeFighterTrimsNicknameQuotes(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/ufc")
	defer cleanup()

	fighter, ok := normalizeFighter(context.Background(), rawFighter{
		href:        "/athlete/max-holloway",
		name:        "  Max   Holloway ",
		nickname:    `"Blessed"`,
		recordText:  "26-7-0 (W-L-D)",
		weightClass: "Featherweight",
	})
	require.True(t, ok)
	require.Equal(t, "max-holloway", fighter.ExternalId)
	require.Equal(t, "Max Holloway", fighter.Name)
	require.Equal(t, "Blessed", fighter.Nickname)
	require.Equal(t, fightdata.Record{Wins: 26, Losses: 7}, fighter.Record)
	require.Nil(t, fighter.Ranking)
}
