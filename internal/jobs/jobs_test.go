package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/pantrypal/internal/db"
	"github.com/erazemk/pantrypal/internal/live"
	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/pantry"
	"github.com/erazemk/pantrypal/internal/store"
)

func TestRelabelSignalsEveryOwnerWithItems(t *testing.T) {
	database := db.NewTestDB(t)
	bus := live.NewBus()
	defer bus.Close()
	ctx := context.Background()

	svc := pantry.NewService(database, bus)
	today := svc.Today()

	var owners []string
	for _, email := range []string{"a@example.com", "b@example.com"} {
		u, err := store.CreateUser(ctx, database, email, "", "hash")
		require.NoError(t, err)
		_, err = svc.Create(ctx, model.Item{
			OwnerID: u.ID, Name: "Milk", Quantity: 1, Unit: "L",
			PurchaseDate: today, ExpiryDate: today.AddDays(1),
		})
		require.NoError(t, err)
		owners = append(owners, u.ID)
	}
	idle, err := store.CreateUser(ctx, database, "idle@example.com", "", "hash")
	require.NoError(t, err)

	signals := map[string]<-chan struct{}{}
	for _, id := range append(owners, idle.ID) {
		ch, cancel, err := bus.Subscribe(ctx, id)
		require.NoError(t, err)
		defer cancel()
		signals[id] = ch
	}

	s := New(database, svc, time.UTC)
	require.NoError(t, s.Relabel(ctx))

	for _, id := range owners {
		select {
		case <-signals[id]:
		case <-time.After(time.Second):
			t.Fatalf("owner %s was not signalled", id)
		}
	}
	assert.Len(t, signals[idle.ID], 0)
}

func TestPurgeTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_, err := database.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?), (?, ?)`,
		"old", now.Add(-time.Hour), "live", now.Add(time.Hour))
	require.NoError(t, err)

	s := New(database, nil, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.PurgeTokens(ctx))

	revoked, err := store.IsTokenRevoked(ctx, database, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
	revoked, err = store.IsTokenRevoked(ctx, database, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSchedulesParse(t *testing.T) {
	for _, spec := range []string{RelabelSpec, PurgeSpec} {
		_, err := parser.Parse(spec)
		assert.NoError(t, err, spec)
	}
}

func TestStartAndStop(t *testing.T) {
	database := db.NewTestDB(t)
	s := New(database, nil, time.UTC)
	s.now = func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)

	// No relabel had ever run, so Start caught up and recorded today.
	last, err := store.GetSetting(context.Background(), database, store.SettingLastRelabel)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", last)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestRelabelRecordsDate(t *testing.T) {
	database := db.NewTestDB(t)
	bus := live.NewBus()
	defer bus.Close()
	ctx := context.Background()

	tokyo := time.FixedZone("JST", 9*60*60)
	s := New(database, pantry.NewService(database, bus), tokyo)
	// Still March 9 in UTC, already March 10 in Tokyo.
	s.now = func() time.Time { return time.Date(2026, time.March, 9, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Relabel(ctx))

	last, err := store.GetSetting(ctx, database, store.SettingLastRelabel)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", last)
}

func TestStartSkipsRelabelAlreadyRunToday(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	today := model.NewDate(2026, time.March, 10)

	u, err := store.CreateUser(ctx, database, "a@example.com", "", "hash")
	require.NoError(t, err)
	_, err = store.CreateItem(ctx, database, model.Item{
		OwnerID: u.ID, Name: "Milk", Quantity: 1, Unit: "L",
		PurchaseDate: today, ExpiryDate: today.AddDays(3),
	})
	require.NoError(t, err)
	require.NoError(t, store.SetSetting(ctx, database, store.SettingLastRelabel, today.String()))

	// No pantry service: a relabel here would touch the owner and panic.
	s := New(database, nil, time.UTC)
	s.now = func() time.Time { return time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Start())

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	s.Stop(stopCtx)
}
