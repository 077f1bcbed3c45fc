package templates

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"github.com/Masterminds/sprig/v3"
)

//go:embed activation_email.html
var defaultActivation string

//go:embed subscription_email.html
var defaultDigest string

// ActivationContext feeds the double-opt-in email.
type ActivationContext struct {
	ActivationLink    string
	SubscriptionTitle string
}

// SubscriptionView is the subscription part of a digest.
type SubscriptionView struct {
	ID    string
	Title string
	Email string
}

// EntryView is one directory entry rendered in a digest.
type EntryView struct {
	ID          string
	Title       string
	Description string
	Category    string
	Tags        string
	AddressLine string
	Homepage    string
	Email       string
	Phone       string
}

// DigestContext feeds the periodic notification email.
type DigestContext struct {
	Subscription    SubscriptionView
	Entries         []EntryView
	Interval        string
	Domain          string
	UnsubscribeLink string
}

// Renderer holds the parsed email templates. Custom template files can
// replace the embedded defaults via config paths.
type Renderer struct {
	activation *template.Template
	digest     *template.Template
}

// NewRenderer parses the activation and digest templates. Empty paths fall
// back to the embedded defaults.
func NewRenderer(activationPath, digestPath string) (*Renderer, error) {
	activation, err := parse("activation_email", activationPath, defaultActivation)
	if err != nil {
		return nil, err
	}
	digest, err := parse("subscription_email", digestPath, defaultDigest)
	if err != nil {
		return nil, err
	}
	return &Renderer{activation: activation, digest: digest}, nil
}

func parse(name, path, fallback string) (*template.Template, error) {
	src := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
		src = string(b)
	}
	t, err := template.New(name).Funcs(sprig.HtmlFuncMap()).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

// Activation renders the double-opt-in email body.
func (r *Renderer) Activation(ctx ActivationContext) (string, error) {
	var buf bytes.Buffer
	if err := r.activation.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render activation email: %w", err)
	}
	return buf.String(), nil
}

// Digest renders the periodic notification email body.
func (r *Renderer) Digest(ctx DigestContext) (string, error) {
	var buf bytes.Buffer
	if err := r.digest.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render digest email: %w", err)
	}
	return buf.String(), nil
}
