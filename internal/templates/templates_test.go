package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRendererActivationDefault(t *testing.T) {
	r, err := NewRenderer("", "")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	html, err := r.Activation(ActivationContext{
		ActivationLink:    "https://api.example.org/v1/subscriptions/abc-123/activate",
		SubscriptionTitle: "Berlin Mitte",
	})
	if err != nil {
		t.Fatalf("Activation: %v", err)
	}
	if !strings.Contains(html, "https://api.example.org/v1/subscriptions/abc-123/activate") {
		t.Errorf("activation email missing activation link:\n%s", html)
	}
	if !strings.Contains(html, "Berlin Mitte") {
		t.Errorf("activation email missing subscription title")
	}
}

func TestRendererDigestDefault(t *testing.T) {
	r, err := NewRenderer("", "")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	longDescription := strings.Repeat("x", 400)
	html, err := r.Digest(DigestContext{
		Subscription: SubscriptionView{
			ID:    "abc-123",
			Title: "Berlin Mitte",
			Email: "jane@example.org",
		},
		Entries: []EntryView{
			{
				ID:          "entry-1",
				Title:       "Repair Cafe",
				Description: longDescription,
				Category:    "Initiative",
				Tags:        "repair, upcycling",
				AddressLine: "Hauptstr. 1, 10827 Berlin, Germany",
				Homepage:    "https://repaircafe.example.org",
				Email:       "info@repaircafe.example.org",
				Phone:       "+49 30 1234567",
			},
			{
				ID:    "entry-2",
				Title: "Community Garden",
			},
		},
		Interval:        "weekly",
		Domain:          "kartevonmorgen.org",
		UnsubscribeLink: "https://api.example.org/v1/subscriptions/abc-123/unsubscribe",
	})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	for _, want := range []string{
		"Weekly update for Berlin Mitte",
		"are 2 new or changed entries",
		"https://kartevonmorgen.org/#/?entry=entry-1",
		"https://kartevonmorgen.org/#/?entry=entry-2",
		"Repair Cafe",
		"Community Garden",
		"Initiative",
		"repair, upcycling",
		"Hauptstr. 1, 10827 Berlin, Germany",
		"https://repaircafe.example.org",
		"jane@example.org",
		"https://api.example.org/v1/subscriptions/abc-123/unsubscribe",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("digest missing %q", want)
		}
	}

	// Long descriptions are truncated so digests stay readable.
	if strings.Contains(html, longDescription) {
		t.Errorf("digest contains untruncated description")
	}
	if !strings.Contains(html, strings.Repeat("x", 280)) {
		t.Errorf("digest missing truncated description")
	}
}

func TestRendererDigestSingleEntry(t *testing.T) {
	r, err := NewRenderer("", "")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	html, err := r.Digest(DigestContext{
		Subscription: SubscriptionView{Title: "Leipzig", Email: "jane@example.org"},
		Entries:      []EntryView{{ID: "e1", Title: "Foodsharing Point"}},
		Interval:     "daily",
		Domain:       "kartevonmorgen.org",
	})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !strings.Contains(html, "is 1 new or changed entry") {
		t.Errorf("digest singular wording missing:\n%s", html)
	}
}

func TestNewRendererCustomPath(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "activation.html")
	if err := os.WriteFile(custom, []byte("<p>Click {{ .ActivationLink }}</p>"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	r, err := NewRenderer(custom, "")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	html, err := r.Activation(ActivationContext{ActivationLink: "https://example.org/a"})
	if err != nil {
		t.Fatalf("Activation: %v", err)
	}
	if html != "<p>Click https://example.org/a</p>" {
		t.Errorf("custom template not used, got %q", html)
	}
}

func TestNewRendererMissingFile(t *testing.T) {
	if _, err := NewRenderer(filepath.Join(t.TempDir(), "nope.html"), ""); err == nil {
		t.Fatalf("expected error for missing template file")
	}
}

func TestNewRendererParseError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.html")
	if err := os.WriteFile(bad, []byte("{{ .Unclosed"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := NewRenderer("", bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
