package fightstore

import (
	"context"
	"testing"
	"time"
	"upset-backend/lib/fightdata"
	"upset-backend/lib/fightstore/db"
	"upset-backend/lib/testutil"
	"upset-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestUpsertIdempotence(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "lib/fightstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	date := time.Date(2025, 1, 25, 0, 0, 0, 0, timezone.Location)
	event := fightdata.Event{
		ExternalId: "ufc-311",
		Name:       "UFC 311: Makhachev vs Moicano",
		Date:       &date,
		Location:   "Los Angeles, California",
		Status:     fightdata.EventUpcoming,
	}

	{
		err := store.UpsertEvents(ctx, []fightdata.Event{event})
		require.NoError(t, err)

		got, found, err := store.GetEvent(ctx, "ufc-311")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, event.Name, got.Name)
		require.Equal(t, fightdata.EventUpcoming, got.Status)
		require.NotNil(t, got.Date)
		require.True(t, date.Equal(*got.Date))
	}
	{
		// a second run with fresher fields replaces in place instead
		// of duplicating
		event.Status = fightdata.EventCompleted
		err := store.UpsertEvents(ctx, []fightdata.Event{event})
		require.NoError(t, err)

		events, err := store.ListEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, fightdata.EventCompleted, events[0].Status)
	}
}

func TestFightRoundTrip(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "lib/fightstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	fights := []fightdata.Fight{
		{
			ExternalId:      "ufc-311:makhachev-vs-moicano",
			EventExternalId: "ufc-311",
			OrderIndex:      0,
			CornerA:         fightdata.Corner{ExternalId: "islam-makhachev", Name: "Islam Makhachev"},
			CornerB:         fightdata.Corner{ExternalId: "renato-moicano", Name: "Renato Moicano"},
			WeightClass:     "Lightweight",
			Winner:          fightdata.WinnerCornerA,
			Method:          fightdata.MethodSubmission,
			MethodText:      "Submission (D'Arce Choke)",
			Round:           1,
			Time:            "4:05",
		},
		{
			ExternalId:      "ufc-311:dvalishvili-vs-nurmagomedov",
			EventExternalId: "ufc-311",
			OrderIndex:      1,
			CornerA:         fightdata.Corner{ExternalId: "merab-dvalishvili", Name: "Merab Dvalishvili"},
			CornerB:         fightdata.Corner{ExternalId: "umar-nurmagomedov", Name: "Umar Nurmagomedov"},
			WeightClass:     "Bantamweight",
		},
	}
	require.NoError(t, store.UpsertFights(ctx, fights))

	got, err := store.ListFights(ctx, "ufc-311")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// card order is preserved
	require.Equal(t, "ufc-311:makhachev-vs-moicano", got[0].ExternalId)
	require.Equal(t, fightdata.MethodSubmission, got[0].Method)
	require.Equal(t, "Submission (D'Arce Choke)", got[0].MethodText)
	require.Equal(t, 1, got[0].Round)
	// the unresolved fight keeps its zero values
	require.Equal(t, fightdata.Winner(""), got[1].Winner)
	require.Equal(t, 0, got[1].Round)
}

func TestFighterRankingNullability(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "lib/fightstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	champ := 0
	contender := 1
	fighters := []fightdata.Fighter{
		{
			ExternalId:  "islam-makhachev",
			Name:        "Islam Makhachev",
			Record:      fightdata.Record{Wins: 26, Losses: 1},
			WeightClass: "Lightweight",
			Ranking:     &champ,
		},
		{
			ExternalId:  "arman-tsarukyan",
			Name:        "Arman Tsarukyan",
			Record:      fightdata.Record{Wins: 22, Losses: 3},
			WeightClass: "Lightweight",
			Ranking:     &contender,
		},
		{
			ExternalId: "debuting-fighter",
			Name:       "Debuting Fighter",
			Record:     fightdata.Record{Wins: 8},
		},
	}
	require.NoError(t, store.UpsertFighters(ctx, fighters))

	{
		got, found, err := store.GetFighter(ctx, "debuting-fighter")
		require.NoError(t, err)
		require.True(t, found)
		require.Nil(t, got.Ranking)
	}
	{
		ranked, err := store.ListRankedFighters(ctx, "Lightweight")
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		// champion sorts first
		require.Equal(t, "islam-makhachev", ranked[0].ExternalId)
		require.NotNil(t, ranked[0].Ranking)
		require.Equal(t, 0, *ranked[0].Ranking)
	}
	{
		_, found, err := store.GetFighter(ctx, "nobody")
		require.NoError(t, err)
		require.False(t, found)
	}
}
