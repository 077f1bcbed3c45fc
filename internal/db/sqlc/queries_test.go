package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, *Queries) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		t.Fatalf("failed to connect to db: %v", err)
	}

	return pool, New(pool)
}

func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func toPgTime(ts time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: ts, Valid: true}
}

func testSubscriptionParams(email string) CreateSubscriptionParams {
	return CreateSubscriptionParams{
		Title:            "Berlin",
		Email:            email,
		LatMin:           52.3,
		LonMin:           13.0,
		LatMax:           52.7,
		LonMax:           13.8,
		Interval:         "daily",
		SubscriptionType: "creates",
		Language:         "en",
	}
}

func TestCreateAndGetSubscription(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	email := fmt.Sprintf("create-%d@example.org", time.Now().UnixNano())

	created, err := q.CreateSubscription(ctx, testSubscriptionParams(email))
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	defer q.DeleteSubscription(ctx, created.ID)

	if created.IsActive {
		t.Fatalf("expected new subscription to be inactive")
	}
	if created.Language != "en" {
		t.Fatalf("expected language 'en', got %q", created.Language)
	}

	got, err := q.GetSubscription(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to get subscription: %v", err)
	}
	if got.Email != email {
		t.Fatalf("expected email %q, got %q", email, got.Email)
	}
}

func TestFindSimilarSubscription(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	email := fmt.Sprintf("similar-%d@example.org", time.Now().UnixNano())
	params := testSubscriptionParams(email)

	created, err := q.CreateSubscription(ctx, params)
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	defer q.DeleteSubscription(ctx, created.ID)

	found, err := q.FindSimilarSubscription(ctx, FindSimilarSubscriptionParams{
		Email:            params.Email,
		Interval:         params.Interval,
		LatMin:           params.LatMin,
		LonMin:           params.LonMin,
		LatMax:           params.LatMax,
		LonMax:           params.LonMax,
		SubscriptionType: params.SubscriptionType,
		Language:         params.Language,
	})
	if err != nil {
		t.Fatalf("expected similar subscription to be found: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected to find the created subscription")
	}

	// A different interval must not match.
	_, err = q.FindSimilarSubscription(ctx, FindSimilarSubscriptionParams{
		Email:            params.Email,
		Interval:         "weekly",
		LatMin:           params.LatMin,
		LonMin:           params.LonMin,
		LatMax:           params.LatMax,
		LonMax:           params.LonMax,
		SubscriptionType: params.SubscriptionType,
		Language:         params.Language,
	})
	if err == nil {
		t.Fatalf("did not expect a match for a different interval")
	}
}

func TestSetSubscriptionActiveAndListByInterval(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	email := fmt.Sprintf("activate-%d@example.org", time.Now().UnixNano())
	params := testSubscriptionParams(email)
	params.Interval = "monthly"

	created, err := q.CreateSubscription(ctx, params)
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	defer q.DeleteSubscription(ctx, created.ID)

	updated, err := q.SetSubscriptionActive(ctx, SetSubscriptionActiveParams{ID: created.ID, IsActive: true})
	if err != nil {
		t.Fatalf("failed to activate subscription: %v", err)
	}
	if !updated.IsActive {
		t.Fatalf("expected subscription to be active")
	}
	if !updated.UpdatedAt.Time.After(created.UpdatedAt.Time) {
		t.Fatalf("expected updated_at to advance on update")
	}

	items, err := q.ListActiveSubscriptionsByInterval(ctx, "monthly")
	if err != nil {
		t.Fatalf("failed to list active subscriptions: %v", err)
	}
	seen := false
	for _, it := range items {
		if it.ID == created.ID {
			seen = true
		}
		if !it.IsActive {
			t.Fatalf("expected only active subscriptions in the list")
		}
	}
	if !seen {
		t.Fatalf("expected activated subscription to appear in interval list")
	}
}

func TestListSubscriptionsFilters(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	email := fmt.Sprintf("list-%d@example.org", time.Now().UnixNano())

	created, err := q.CreateSubscription(ctx, testSubscriptionParams(email))
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	defer q.DeleteSubscription(ctx, created.ID)

	items, err := q.ListSubscriptions(ctx, ListSubscriptionsParams{
		Column1: "",
		Column2: -1,
		Column3: email,
		Limit:   10,
		Offset:  0,
	})
	if err != nil {
		t.Fatalf("failed to list subscriptions: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("expected exactly the created subscription for email filter, got %d items", len(items))
	}

	count, err := q.CountSubscriptions(ctx, CountSubscriptionsParams{Column1: "", Column2: 0, Column3: email})
	if err != nil {
		t.Fatalf("failed to count subscriptions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected inactive count 1 for email filter, got %d", count)
	}
}

func testEntryParams(id string, version int32, ts time.Time) UpsertEntriesParams {
	return UpsertEntriesParams{
		ID:          id,
		Created:     toPgTime(ts),
		Version:     version,
		Title:       "Repair Cafe",
		Description: "Fix things together",
		Lat:         52.52,
		Lng:         13.40,
		City:        toPgText("Berlin"),
		License:     "CC0-1.0",
		Categories:  []string{"2cd00bebec0c48ba9db761da48678134"},
		Tags:        []string{"repair", "community"},
	}
}

func TestUpsertEntriesBatch(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	id := fmt.Sprintf("test-entry-%d", time.Now().UnixNano())
	now := time.Now().UTC()

	defer pool.Exec(ctx, "DELETE FROM entry WHERE id = $1", id)

	br := q.UpsertEntries(ctx, []UpsertEntriesParams{testEntryParams(id, 3, now)})
	br.Exec(func(i int, err error) {
		if err != nil {
			t.Fatalf("failed to upsert entry %d: %v", i, err)
		}
	})

	got, err := q.GetEntry(ctx, id)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Version != 3 {
		t.Fatalf("expected version 3, got %d", got.Version)
	}
	firstSync := got.UpdatedAt.Time

	// Re-upserting the same version must not bump updated_at.
	stale := testEntryParams(id, 3, now)
	stale.Title = "Stale Title"
	br = q.UpsertEntries(ctx, []UpsertEntriesParams{stale})
	br.Exec(func(i int, err error) {
		if err != nil {
			t.Fatalf("failed to re-upsert entry %d: %v", i, err)
		}
	})

	got, err = q.GetEntry(ctx, id)
	if err != nil {
		t.Fatalf("failed to get entry after stale upsert: %v", err)
	}
	if got.Title != "Repair Cafe" {
		t.Fatalf("expected same-version upsert to be a no-op, title changed to %q", got.Title)
	}
	if !got.UpdatedAt.Time.Equal(firstSync) {
		t.Fatalf("expected updated_at unchanged for same version")
	}

	// A newer version replaces the row and fires the trigger.
	fresh := testEntryParams(id, 4, now)
	fresh.Title = "Repair Cafe Neukoelln"
	br = q.UpsertEntries(ctx, []UpsertEntriesParams{fresh})
	br.Exec(func(i int, err error) {
		if err != nil {
			t.Fatalf("failed to upsert newer version %d: %v", i, err)
		}
	})

	got, err = q.GetEntry(ctx, id)
	if err != nil {
		t.Fatalf("failed to get entry after version bump: %v", err)
	}
	if got.Version != 4 || got.Title != "Repair Cafe Neukoelln" {
		t.Fatalf("expected newer version to replace the row, got version %d title %q", got.Version, got.Title)
	}
	if !got.UpdatedAt.Time.After(firstSync) {
		t.Fatalf("expected updated_at to advance for newer version")
	}
}

func TestListEntriesInBBox(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	id := fmt.Sprintf("test-bbox-%d", time.Now().UnixNano())
	now := time.Now().UTC()

	defer pool.Exec(ctx, "DELETE FROM entry WHERE id = $1", id)

	br := q.UpsertEntries(ctx, []UpsertEntriesParams{testEntryParams(id, 1, now)})
	br.Exec(func(i int, err error) {
		if err != nil {
			t.Fatalf("failed to upsert entry %d: %v", i, err)
		}
	})

	items, err := q.ListEntriesInBBox(ctx, ListEntriesInBBoxParams{
		Lat:         52.0,
		Lat_2:       53.0,
		Lng:         13.0,
		Lng_2:       14.0,
		UpdatedAt:   toPgTime(now.Add(-time.Minute)),
		UpdatedAt_2: toPgTime(now.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("failed to list entries in bbox: %v", err)
	}
	seen := false
	for _, it := range items {
		if it.ID == id {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("expected entry inside bbox and window to be listed")
	}

	// Outside the box.
	items, err = q.ListEntriesInBBox(ctx, ListEntriesInBBoxParams{
		Lat:         40.0,
		Lat_2:       41.0,
		Lng:         13.0,
		Lng_2:       14.0,
		UpdatedAt:   toPgTime(now.Add(-time.Minute)),
		UpdatedAt_2: toPgTime(now.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("failed to list entries outside bbox: %v", err)
	}
	for _, it := range items {
		if it.ID == id {
			t.Fatalf("did not expect entry outside bbox to be listed")
		}
	}
}

func TestAppSettingsUpsertAndGet(t *testing.T) {
	pool, q := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	key := fmt.Sprintf("test.setting.%d", time.Now().UnixNano())

	defer q.DeleteAppSetting(ctx, key)

	created, err := q.UpsertAppSetting(ctx, UpsertAppSettingParams{Key: key, Value: "1"})
	if err != nil {
		t.Fatalf("failed to upsert setting: %v", err)
	}
	if created.Value != "1" {
		t.Fatalf("expected value '1', got %q", created.Value)
	}

	updated, err := q.UpsertAppSetting(ctx, UpsertAppSettingParams{Key: key, Value: "2"})
	if err != nil {
		t.Fatalf("failed to update setting: %v", err)
	}
	if updated.Value != "2" {
		t.Fatalf("expected value '2', got %q", updated.Value)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected upsert to keep the same row")
	}

	got, err := q.GetAppSetting(ctx, key)
	if err != nil {
		t.Fatalf("failed to get setting: %v", err)
	}
	if got.Value != "2" {
		t.Fatalf("expected stored value '2', got %q", got.Value)
	}
}
