// Package fightstore persists canonical fight records to sqlite (or a
// remote libsql database). Every write is an upsert keyed by the
// record's external id so repeated ingestion runs stay idempotent.
package fightstore

import (
	"context"
	"database/sql"
	"time"
	"upset-backend/lib/fightdata"
	"upset-backend/lib/fightstore/db"
	"upset-backend/lib/timezone"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Init applies the embedded schema, every statement is idempotent so
// calling it on an existing database is safe.
func (s Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	return err
}

const upsertEventQuery = `
insert into events (external_id, name, date, location, status, updated_at)
values (?, ?, ?, ?, ?, ?)
on conflict (external_id) do update set
	name = excluded.name,
	date = excluded.date,
	location = excluded.location,
	status = excluded.status,
	updated_at = excluded.updated_at`

func (s Store) UpsertEvents(ctx context.Context, events []fightdata.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := timezone.Now().Unix()
	for _, e := range events {
		var date sql.NullInt64
		if e.Date != nil {
			date = sql.NullInt64{Int64: e.Date.Unix(), Valid: true}
		}
		_, err := tx.ExecContext(
			ctx, upsertEventQuery,
			e.ExternalId, e.Name, date, e.Location, string(e.Status), now,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const upsertFightQuery = `
insert into fights (
	external_id, event_external_id, order_index,
	corner_a_id, corner_a_name, corner_b_id, corner_b_name,
	weight_class, winner, method, method_text, round, time, updated_at
)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (external_id) do update set
	event_external_id = excluded.event_external_id,
	order_index = excluded.order_index,
	corner_a_id = excluded.corner_a_id,
	corner_a_name = excluded.corner_a_name,
	corner_b_id = excluded.corner_b_id,
	corner_b_name = excluded.corner_b_name,
	weight_class = excluded.weight_class,
	winner = excluded.winner,
	method = excluded.method,
	method_text = excluded.method_text,
	round = excluded.round,
	time = excluded.time,
	updated_at = excluded.updated_at`

func (s Store) UpsertFights(ctx context.Context, fights []fightdata.Fight) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := timezone.Now().Unix()
	for _, f := range fights {
		_, err := tx.ExecContext(
			ctx, upsertFightQuery,
			f.ExternalId, f.EventExternalId, f.OrderIndex,
			f.CornerA.ExternalId, f.CornerA.Name,
			f.CornerB.ExternalId, f.CornerB.Name,
			f.WeightClass, string(f.Winner), string(f.Method), f.MethodText, f.Round, f.Time, now,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const upsertFighterQuery = `
insert into fighters (
	external_id, name, nickname,
	wins, losses, draws, no_contests,
	weight_class, ranking, image_url, updated_at
)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (external_id) do update set
	name = excluded.name,
	nickname = excluded.nickname,
	wins = excluded.wins,
	losses = excluded.losses,
	draws = excluded.draws,
	no_contests = excluded.no_contests,
	weight_class = excluded.weight_class,
	ranking = excluded.ranking,
	image_url = excluded.image_url,
	updated_at = excluded.updated_at`

func (s Store) UpsertFighters(ctx context.Context, fighters []fightdata.Fighter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := timezone.Now().Unix()
	for _, f := range fighters {
		var ranking sql.NullInt64
		if f.Ranking != nil {
			ranking = sql.NullInt64{Int64: int64(*f.Ranking), Valid: true}
		}
		_, err := tx.ExecContext(
			ctx, upsertFighterQuery,
			f.ExternalId, f.Name, f.Nickname,
			f.Record.Wins, f.Record.Losses, f.Record.Draws, f.Record.NoContests,
			f.WeightClass, ranking, f.ImageUrl, now,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanEvent(row interface{ Scan(...any) error }) (fightdata.Event, error) {
	var e fightdata.Event
	var date sql.NullInt64
	var status string
	err := row.Scan(&e.ExternalId, &e.Name, &date, &e.Location, &status)
	if err != nil {
		return fightdata.Event{}, err
	}
	if date.Valid {
		t := time.Unix(date.Int64, 0).In(timezone.Location)
		e.Date = &t
	}
	e.Status = fightdata.EventStatus(status)
	return e, nil
}

func (s Store) GetEvent(ctx context.Context, externalId string) (fightdata.Event, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`select external_id, name, date, location, status from events where external_id = ?`,
		externalId,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return fightdata.Event{}, false, nil
	}
	if err != nil {
		return fightdata.Event{}, false, err
	}
	return e, true, nil
}

// ListEvents returns stored events most recent first, events without a
// date sort last. A limit of zero or less returns everything.
func (s Store) ListEvents(ctx context.Context, limit int) ([]fightdata.Event, error) {
	if limit <= 0 {
		// sqlite reads a negative limit as unbounded
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`select external_id, name, date, location, status from events
		 order by date is null, date desc limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []fightdata.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s Store) ListFights(ctx context.Context, eventExternalId string) ([]fightdata.Fight, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select external_id, event_external_id, order_index,
			corner_a_id, corner_a_name, corner_b_id, corner_b_name,
			weight_class, winner, method, method_text, round, time
		 from fights where event_external_id = ? order by order_index`,
		eventExternalId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fights []fightdata.Fight
	for rows.Next() {
		var f fightdata.Fight
		var winner, method string
		err := rows.Scan(
			&f.ExternalId, &f.EventExternalId, &f.OrderIndex,
			&f.CornerA.ExternalId, &f.CornerA.Name,
			&f.CornerB.ExternalId, &f.CornerB.Name,
			&f.WeightClass, &winner, &method, &f.MethodText, &f.Round, &f.Time,
		)
		if err != nil {
			return nil, err
		}
		f.Winner = fightdata.Winner(winner)
		f.Method = fightdata.Method(method)
		fights = append(fights, f)
	}
	return fights, rows.Err()
}

func scanFighter(row interface{ Scan(...any) error }) (fightdata.Fighter, error) {
	var f fightdata.Fighter
	var ranking sql.NullInt64
	err := row.Scan(
		&f.ExternalId, &f.Name, &f.Nickname,
		&f.Record.Wins, &f.Record.Losses, &f.Record.Draws, &f.Record.NoContests,
		&f.WeightClass, &ranking, &f.ImageUrl,
	)
	if err != nil {
		return fightdata.Fighter{}, err
	}
	if ranking.Valid {
		r := int(ranking.Int64)
		f.Ranking = &r
	}
	return f, nil
}

func (s Store) GetFighter(ctx context.Context, externalId string) (fightdata.Fighter, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`select external_id, name, nickname,
			wins, losses, draws, no_contests,
			weight_class, ranking, image_url
		 from fighters where external_id = ?`,
		externalId,
	)
	f, err := scanFighter(row)
	if err == sql.ErrNoRows {
		return fightdata.Fighter{}, false, nil
	}
	if err != nil {
		return fightdata.Fighter{}, false, err
	}
	return f, true, nil
}

// ListRankedFighters returns ranked fighters for one weight class (or
// every class when weightClass is empty), champions first.
func (s Store) ListRankedFighters(ctx context.Context, weightClass string) ([]fightdata.Fighter, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select external_id, name, nickname,
			wins, losses, draws, no_contests,
			weight_class, ranking, image_url
		 from fighters
		 where ranking is not null and (? = '' or weight_class = ?)
		 order by weight_class, ranking`,
		weightClass, weightClass,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fighters []fightdata.Fighter
	for rows.Next() {
		f, err := scanFighter(rows)
		if err != nil {
			return nil, err
		}
		fighters = append(fighters, f)
	}
	return fighters, rows.Err()
}
