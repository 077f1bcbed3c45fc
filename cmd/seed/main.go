package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	erepo "github.com/kartevonmorgen/kvmflows/internal/entries/repository"
	"github.com/kartevonmorgen/kvmflows/internal/ofdb"
	subdomain "github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
	subrepo "github.com/kartevonmorgen/kvmflows/internal/subscriptions/repository"
)

// Development seeding tool: inserts a demo subscription and sample entries
// so the digest jobs have something to chew on locally.

type subscriptionOpts struct {
	Email    string
	Title    string
	Interval string
	Type     string
	Language string
	Active   bool
	LatMin   float64
	LonMin   float64
	LatMax   float64
	LonMax   float64
}

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}
	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		fatalf("invalid DATABASE_URL: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		fatalf("pg pool: %v", err)
	}
	defer pool.Close()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "subscription":
		fs := flag.NewFlagSet("subscription", flag.ExitOnError)
		opts := bindSubscriptionFlags(fs)
		_ = fs.Parse(os.Args[2:])
		id, err := seedSubscription(ctx, pool, *opts)
		if err != nil {
			fatalf("seed subscription: %v", err)
		}
		printEnv(map[string]string{"SUBSCRIPTION_ID": id.String()})
	case "entries":
		fs := flag.NewFlagSet("entries", flag.ExitOnError)
		count := fs.Int("count", 5, "how many sample entries to insert")
		_ = fs.Parse(os.Args[2:])
		n, err := seedEntries(ctx, pool, *count)
		if err != nil {
			fatalf("seed entries: %v", err)
		}
		fmt.Printf("inserted %d sample entries\n", n)
	case "default":
		fs := flag.NewFlagSet("default", flag.ExitOnError)
		opts := bindSubscriptionFlags(fs)
		count := fs.Int("count", 5, "how many sample entries to insert")
		_ = fs.Parse(os.Args[2:])
		id, err := seedSubscription(ctx, pool, *opts)
		if err != nil {
			fatalf("seed subscription: %v", err)
		}
		n, err := seedEntries(ctx, pool, *count)
		if err != nil {
			fatalf("seed entries: %v", err)
		}
		fmt.Printf("inserted %d sample entries\n", n)
		printEnv(map[string]string{"SUBSCRIPTION_ID": id.String()})
	default:
		usage()
		os.Exit(2)
	}
}

func bindSubscriptionFlags(fs *flag.FlagSet) *subscriptionOpts {
	opts := &subscriptionOpts{}
	fs.StringVar(&opts.Email, "email", envOr("EMAIL", "demo@kartevonmorgen.org"), "subscriber email")
	fs.StringVar(&opts.Title, "title", envOr("TITLE", "Berlin Mitte"), "subscription title")
	fs.StringVar(&opts.Interval, "interval", envOr("INTERVAL", subdomain.IntervalWeekly), "daily|weekly|monthly")
	fs.StringVar(&opts.Type, "type", envOr("TYPE", subdomain.TypeCreates), "creates|updates")
	fs.StringVar(&opts.Language, "lang", envOr("LANG_CODE", "en"), "template language")
	fs.BoolVar(&opts.Active, "active", true, "activate the subscription immediately")
	fs.Float64Var(&opts.LatMin, "lat-min", 52.4, "bounding box south edge")
	fs.Float64Var(&opts.LonMin, "lon-min", 13.2, "bounding box west edge")
	fs.Float64Var(&opts.LatMax, "lat-max", 52.6, "bounding box north edge")
	fs.Float64Var(&opts.LonMax, "lon-max", 13.6, "bounding box east edge")
	return opts
}

func seedSubscription(ctx context.Context, pool *pgxpool.Pool, opts subscriptionOpts) (uuid.UUID, error) {
	repo := subrepo.New(pool)
	sub, err := repo.Create(ctx, subdomain.CreateInput{
		Title:            opts.Title,
		Email:            strings.ToLower(strings.TrimSpace(opts.Email)),
		LatMin:           opts.LatMin,
		LonMin:           opts.LonMin,
		LatMax:           opts.LatMax,
		LonMax:           opts.LonMax,
		Interval:         opts.Interval,
		SubscriptionType: opts.Type,
		Language:         opts.Language,
	})
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.UUID(sub.ID.Bytes)
	if opts.Active {
		if _, err := repo.SetActive(ctx, id, true); err != nil {
			return uuid.Nil, err
		}
	}
	return id, nil
}

func seedEntries(ctx context.Context, pool *pgxpool.Pool, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	now := time.Now()
	entries := make([]ofdb.Entry, 0, count)
	for i := 0; i < count; i++ {
		entries = append(entries, ofdb.Entry{
			ID:          fmt.Sprintf("seed%026d", i+1),
			Created:     now.Unix(),
			Version:     1,
			Title:       fmt.Sprintf("Sample initiative %d", i+1),
			Description: "Seeded entry for local development.",
			Lat:         52.4 + 0.01*float64(i%20),
			Lng:         13.2 + 0.01*float64(i%20),
			Street:      fmt.Sprintf("Musterstr. %d", i+1),
			Zip:         "10115",
			City:        "Berlin",
			License:     "CC0-1.0",
			Categories:  []string{"initiative"},
			Tags:        []string{"seed", "demo"},
		})
	}
	return erepo.New(pool).BulkUpsert(ctx, entries)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  seed subscription [--email <email>] [--title <title>] [--interval daily|weekly|monthly] [--type creates|updates] [--lang en] [--active] [--lat-min 52.4 --lon-min 13.2 --lat-max 52.6 --lon-max 13.6]
  seed entries [--count 5]
  seed default [--email <email>] [--count 5]

Environment fallbacks:
  EMAIL, TITLE, INTERVAL, TYPE, LANG_CODE
`)
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func printEnv(kv map[string]string) {
	// Print as KEY=VALUE lines so callers can tee into a .env file and `source` it.
	for k, v := range kv {
		fmt.Printf("%s=%s\n", k, v)
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
