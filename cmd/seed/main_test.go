package main

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	edomain "github.com/kartevonmorgen/kvmflows/internal/entries/domain"
	erepo "github.com/kartevonmorgen/kvmflows/internal/entries/repository"
	subrepo "github.com/kartevonmorgen/kvmflows/internal/subscriptions/repository"
)

func TestSeedSubscriptionAndEntries(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("skipping seed integration test: DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	email := fmt.Sprintf("seed.%d@example.org", time.Now().UnixNano())
	opts := subscriptionOpts{
		Email:    email,
		Title:    "Seed test area",
		Interval: "weekly",
		Type:     "creates",
		Language: "en",
		Active:   true,
		LatMin:   52.4,
		LonMin:   13.2,
		LatMax:   52.6,
		LonMax:   13.6,
	}
	id, err := seedSubscription(ctx, pool, opts)
	if err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	sub, err := subrepo.New(pool).GetByID(ctx, id)
	if err != nil {
		t.Fatalf("lookup subscription: %v", err)
	}
	if !sub.IsActive {
		t.Errorf("expected seeded subscription to be active")
	}
	if sub.Email != email {
		t.Errorf("email = %q, want %q", sub.Email, email)
	}

	n, err := seedEntries(ctx, pool, 3)
	if err != nil {
		t.Fatalf("seed entries: %v", err)
	}
	if n != 3 {
		t.Errorf("seeded %d entries, want 3", n)
	}

	box := edomain.BBox{LatMin: 52.3, LonMin: 13.1, LatMax: 52.7, LonMax: 13.7}
	found, err := erepo.New(pool).ListInBBox(ctx, box, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(found) < 3 {
		t.Errorf("found %d entries in bbox, want at least 3", len(found))
	}
}
