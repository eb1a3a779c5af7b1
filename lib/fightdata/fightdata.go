// Package fightdata holds the canonical records every source scraper
// normalizes into, plus the provider contract ingestion jobs call.
// Records are immutable values produced fresh per run, a new
// extraction fully replaces prior state for the same external id.
package fightdata

import (
	"context"
	"time"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventLive      EventStatus = "live"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	// stable upstream key, derived from the event page url
	ExternalId string
	Name       string
	// nil when the source page has no parseable date
	Date     *time.Time
	Location string
	Status   EventStatus
}

type Corner struct {
	ExternalId string
	Name       string
}

type Winner string

const (
	WinnerCornerA   Winner = "cornerA"
	WinnerCornerB   Winner = "cornerB"
	WinnerDraw      Winner = "draw"
	WinnerNoContest Winner = "noContest"
)

type Method string

const (
	MethodKnockout   Method = "knockout"
	MethodSubmission Method = "submission"
	MethodDecision   Method = "decision"
	MethodOther      Method = "other"
)

type Fight struct {
	ExternalId      string
	EventExternalId string
	// bout position on the card, 0 is the main event
	OrderIndex int
	CornerA    Corner
	CornerB    Corner
	// empty until the fight has a weigh-in announcement
	WeightClass string
	// zero value means unresolved, a resolved winner always comes
	// with a method
	Winner Winner
	Method Method
	// the source page's verbatim method label, e.g. "KO/TKO"
	MethodText string
	// zero round means the fight hasn't happened yet
	Round int
	Time  string
}

type Record struct {
	Wins       int
	Losses     int
	Draws      int
	NoContests int
}

type Fighter struct {
	ExternalId  string
	Name        string
	Nickname    string
	Record      Record
	WeightClass string
	// nil when unranked, zero denotes the titleholder
	Ranking  *int
	ImageUrl string
}

type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"
)

// HealthStatus is produced and consumed synchronously per check, it is
// never persisted.
type HealthStatus struct {
	Status    HealthState
	LatencyMs int64
	CanFetch  bool
	CanParse  bool
	Error     string
}

// Provider is the stable surface ingestion jobs call. Methods return
// empty collections (or nil pointers) on benign absence, only
// network-exhaustion and unexpected-structure conditions come back as
// errors.
type Provider interface {
	UpcomingEvents(ctx context.Context) ([]Event, error)
	CompletedEvents(ctx context.Context, limit int) ([]Event, error)
	EventFightCard(ctx context.Context, eventId string) ([]Fight, error)
	FightResult(ctx context.Context, fightId string) (*Fight, error)
	SearchFighters(ctx context.Context, query string, limit int) ([]Fighter, error)
	FighterDetails(ctx context.Context, fighterId string) (*Fighter, error)
	Rankings(ctx context.Context, division string) ([]Fighter, error)
	HealthCheck(ctx context.Context) HealthStatus
}
