package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	edomain "github.com/kartevonmorgen/kvmflows/internal/email/domain"
	endomain "github.com/kartevonmorgen/kvmflows/internal/entries/domain"
	evdomain "github.com/kartevonmorgen/kvmflows/internal/events/domain"
	sdomain "github.com/kartevonmorgen/kvmflows/internal/settings/domain"
	"github.com/kartevonmorgen/kvmflows/internal/templates"
)

type fakeSubs struct {
	items []db.Subscription
	err   error
	calls int
}

func (f *fakeSubs) ListActiveByInterval(ctx context.Context, interval string) ([]db.Subscription, error) {
	f.calls++
	return f.items, f.err
}

type fakeEntries struct {
	byBox    func(box endomain.BBox) []db.Entry
	err      error
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeEntries) ListInBBox(ctx context.Context, box endomain.BBox, from, to time.Time) ([]db.Entry, error) {
	f.lastFrom, f.lastTo = from, to
	if f.err != nil {
		return nil, f.err
	}
	if f.byBox == nil {
		return nil, nil
	}
	return f.byBox(box), nil
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []edomain.Message
	failFor  map[string]int
	attempts map[string]int
}

func (f *fakeSender) Send(ctx context.Context, msg edomain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	f.attempts[msg.To]++
	if f.failFor[msg.To] > 0 {
		f.failFor[msg.To]--
		return errors.New("smtp 421 try again later")
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSettings struct {
	bools   map[string]bool
	strings map[string]string
	ints    map[string]int
}

func (f *fakeSettings) GetString(ctx context.Context, key, def string) (string, error) {
	if v, ok := f.strings[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *fakeSettings) GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error) {
	return def, nil
}

func (f *fakeSettings) GetInt(ctx context.Context, key string, def int) (int, error) {
	if v, ok := f.ints[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *fakeSettings) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	if v, ok := f.bools[key]; ok {
		return v, nil
	}
	return def, nil
}

type fakeCounter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeCounter) AllowCtx(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, 0, f.err
	}
	return true, 0, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []evdomain.Event
}

func (p *capturePublisher) Publish(ctx context.Context, e evdomain.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	return nil
}

func testConfig() config.Config {
	return config.Config{
		PublicBaseURL:    "https://subscriptions.kartevonmorgen.org",
		MapDomain:        "kartevonmorgen.org",
		DigestSender:     "Karte von Morgen <no-reply@kartevonmorgen.org>",
		DigestSubject:    "New initiatives in your area",
		EmailMaxRetries:  3,
		EmailConcurrency: 4,
	}
}

func testSub(email string, latMin float64) db.Subscription {
	id := uuid.New()
	return db.Subscription{
		ID:               pgtype.UUID{Bytes: id, Valid: true},
		Title:            "Berlin Mitte",
		Email:            email,
		LatMin:           latMin,
		LonMin:           13.2,
		LatMax:           latMin + 1,
		LonMax:           13.6,
		Interval:         "weekly",
		SubscriptionType: "creates",
		IsActive:         true,
		Language:         "en",
	}
}

func testEntry(id, title string) db.Entry {
	return db.Entry{
		ID:          id,
		Title:       title,
		Description: "A community garden open to everyone.",
		Lat:         52.52,
		Lng:         13.4,
		Street:      pgtype.Text{String: "Musterstr. 1", Valid: true},
		Zip:         pgtype.Text{String: "10115", Valid: true},
		City:        pgtype.Text{String: "Berlin", Valid: true},
		Categories:  []string{"initiative", "event"},
		Tags:        []string{"garden", "community"},
	}
}

func newTestNotifier(t *testing.T, subs Subscriptions, entries Entries, sender edomain.Sender, settings sdomain.Service) *Notifier {
	t.Helper()
	renderer, err := templates.NewRenderer("", "")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return New(subs, entries, sender, renderer, settings, testConfig())
}

func TestSendDispatchesDigests(t *testing.T) {
	withEntries := testSub("a@example.org", 52)
	without := testSub("b@example.org", 48)
	subs := &fakeSubs{items: []db.Subscription{withEntries, without}}
	entries := &fakeEntries{byBox: func(box endomain.BBox) []db.Entry {
		if box.LatMin == 52 {
			return []db.Entry{testEntry("e1", "Garden A"), testEntry("e2", "Repair Cafe")}
		}
		return nil
	}}
	sender := &fakeSender{}
	pub := &capturePublisher{}

	n := newTestNotifier(t, subs, entries, sender, &fakeSettings{})
	n.SetPublisher(pub)

	stats, err := n.Send(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stats.Subscriptions != 2 || stats.Sent != 1 || stats.Skipped != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "a@example.org" {
		t.Errorf("to = %q", msg.To)
	}
	if msg.Subject != "New initiatives in your area" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Garden A") || !strings.Contains(msg.HTML, "Repair Cafe") {
		t.Errorf("digest body missing entries: %s", msg.HTML)
	}
	wantLink := "/v1/subscriptions/" + uuid.UUID(withEntries.ID.Bytes).String() + "/unsubscribe"
	if !strings.Contains(msg.HTML, wantLink) {
		t.Errorf("digest body missing unsubscribe link %s", wantLink)
	}

	wantFrom := time.Now().AddDate(0, 0, -7)
	if entries.lastFrom.Before(wantFrom.Add(-time.Minute)) || entries.lastFrom.After(wantFrom.Add(time.Minute)) {
		t.Errorf("window from = %v, want about %v", entries.lastFrom, wantFrom)
	}

	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != "notify.weekly.completed" {
		t.Errorf("event type = %q", ev.Type)
	}
	if ev.Meta["sent"] != "1" || ev.Meta["skipped"] != "1" {
		t.Errorf("event meta = %v", ev.Meta)
	}
}

func TestSendRetriesTransientFailure(t *testing.T) {
	sub := testSub("flaky@example.org", 52)
	subs := &fakeSubs{items: []db.Subscription{sub}}
	entries := &fakeEntries{byBox: func(endomain.BBox) []db.Entry {
		return []db.Entry{testEntry("e1", "Garden A")}
	}}
	sender := &fakeSender{failFor: map[string]int{"flaky@example.org": 2}}

	n := newTestNotifier(t, subs, entries, sender, &fakeSettings{})
	stats, err := n.Send(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stats.Sent != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if sender.attempts["flaky@example.org"] != 3 {
		t.Errorf("attempts = %d, want 3", sender.attempts["flaky@example.org"])
	}
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	sub := testSub("down@example.org", 52)
	subs := &fakeSubs{items: []db.Subscription{sub}}
	entries := &fakeEntries{byBox: func(endomain.BBox) []db.Entry {
		return []db.Entry{testEntry("e1", "Garden A")}
	}}
	sender := &fakeSender{failFor: map[string]int{"down@example.org": 3}}

	n := newTestNotifier(t, subs, entries, sender, &fakeSettings{})
	stats, err := n.Send(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stats.Sent != 0 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if sender.attempts["down@example.org"] != 3 {
		t.Errorf("attempts = %d, want 3", sender.attempts["down@example.org"])
	}
}

func TestSendRedirectsToTestRecipient(t *testing.T) {
	sub := testSub("real@example.org", 52)
	subs := &fakeSubs{items: []db.Subscription{sub}}
	entries := &fakeEntries{byBox: func(endomain.BBox) []db.Entry {
		return []db.Entry{testEntry("e1", "Garden A")}
	}}
	sender := &fakeSender{}
	settings := &fakeSettings{strings: map[string]string{
		sdomain.KeyTestRecipient: "qa@kartevonmorgen.org",
	}}

	n := newTestNotifier(t, subs, entries, sender, settings)
	if _, err := n.Send(context.Background(), "daily"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "qa@kartevonmorgen.org" {
		t.Errorf("sent = %+v", sender.sent)
	}
}

func TestSendPausedSkipsRun(t *testing.T) {
	subs := &fakeSubs{items: []db.Subscription{testSub("a@example.org", 52)}}
	sender := &fakeSender{}
	settings := &fakeSettings{bools: map[string]bool{sdomain.KeyEmailPaused: true}}

	n := newTestNotifier(t, subs, &fakeEntries{}, sender, settings)
	stats, err := n.Send(context.Background(), "daily")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if subs.calls != 0 {
		t.Errorf("subscriptions were listed despite pause")
	}
	if len(sender.sent) != 0 || stats.Sent != 0 {
		t.Errorf("mail went out despite pause: %+v", stats)
	}
}

func TestSendUnknownInterval(t *testing.T) {
	n := newTestNotifier(t, &fakeSubs{}, &fakeEntries{}, &fakeSender{}, &fakeSettings{})
	if _, err := n.Send(context.Background(), "hourly"); err == nil {
		t.Fatalf("expected error for unknown interval")
	}
}

func TestSendCountsEntryLookupFailure(t *testing.T) {
	subs := &fakeSubs{items: []db.Subscription{testSub("a@example.org", 52)}}
	entries := &fakeEntries{err: errors.New("db down")}
	sender := &fakeSender{}

	n := newTestNotifier(t, subs, entries, sender, &fakeSettings{})
	stats, err := n.Send(context.Background(), "monthly")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stats.Failed != 1 || len(sender.sent) != 0 {
		t.Errorf("stats = %+v, sent = %d", stats, len(sender.sent))
	}
}

func TestSendListError(t *testing.T) {
	subs := &fakeSubs{err: errors.New("db down")}
	n := newTestNotifier(t, subs, &fakeEntries{}, &fakeSender{}, &fakeSettings{})
	if _, err := n.Send(context.Background(), "daily"); err == nil {
		t.Fatalf("expected error when listing fails")
	}
}

func TestSendFailsOpenOnCounterError(t *testing.T) {
	sub := testSub("a@example.org", 52)
	subs := &fakeSubs{items: []db.Subscription{sub}}
	entries := &fakeEntries{byBox: func(endomain.BBox) []db.Entry {
		return []db.Entry{testEntry("e1", "Garden A")}
	}}
	sender := &fakeSender{}
	counter := &fakeCounter{err: errors.New("redis down")}
	settings := &fakeSettings{ints: map[string]int{sdomain.KeyEmailsPerMinute: 60}}

	n := newTestNotifier(t, subs, entries, sender, settings)
	n.SetCounter(counter)

	stats, err := n.Send(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stats.Sent != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if counter.calls == 0 {
		t.Errorf("counter was never consulted")
	}
}

func TestSendTestMail(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, &fakeSubs{}, &fakeEntries{}, sender, &fakeSettings{})

	if err := n.SendTest(context.Background(), "qa@example.org"); err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "qa@example.org" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.HasPrefix(msg.Subject, "[test] ") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Example initiative") {
		t.Errorf("body missing sample entry")
	}
}

func TestSendTestMailNeedsRecipient(t *testing.T) {
	n := newTestNotifier(t, &fakeSubs{}, &fakeEntries{}, &fakeSender{}, &fakeSettings{})
	if err := n.SendTest(context.Background(), ""); err == nil {
		t.Fatalf("expected error without recipient")
	}
}

func TestEntryViewMapping(t *testing.T) {
	e := testEntry("e1", "Garden A")
	e.Homepage = pgtype.Text{String: "https://garden.example.org", Valid: true}
	e.Email = pgtype.Text{String: "info@garden.example.org", Valid: true}
	e.Telephone = pgtype.Text{String: "+49 30 1234567", Valid: true}

	v := entryView(e)
	if v.Category != "initiative" {
		t.Errorf("category = %q", v.Category)
	}
	if v.Tags != "garden, community" {
		t.Errorf("tags = %q", v.Tags)
	}
	if v.AddressLine != "Musterstr. 1 10115 Berlin" {
		t.Errorf("address = %q", v.AddressLine)
	}
	if v.Homepage != "https://garden.example.org" || v.Phone != "+49 30 1234567" {
		t.Errorf("contact fields = %+v", v)
	}
}

func TestAddressLineSkipsEmptyParts(t *testing.T) {
	e := db.Entry{City: pgtype.Text{String: "Berlin", Valid: true}}
	if got := addressLine(e); got != "Berlin" {
		t.Errorf("address = %q", got)
	}
}
