// Package secrets resolves API credentials before any network call is made.
//
// Resolution checks the process environment first and may fall back to a
// single interactive prompt per secret. Resolved values live in an explicit
// Store that is passed to the components that need them; nothing is written
// back into the environment. Secret values are never logged.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/soyeahso/deepresearch/internal/logging"
)

// Well-known secret names.
const (
	TavilyAPIKey = "TAVILY_API_KEY"
	GoogleAPIKey = "GOOGLE_API_KEY"
)

// Secret is a resolved credential.
type Secret struct {
	Name       string
	Value      string
	FromPrompt bool
}

// Requirement names a secret the run needs. AllowPrompt controls whether
// the resolver may ask the operator for it when the environment lacks it.
type Requirement struct {
	Name        string
	AllowPrompt bool
}

// MissingCredentialError is returned when a required secret cannot be resolved.
type MissingCredentialError struct {
	Name string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s must be set in the environment", e.Name)
}

// Store holds resolved secrets for the lifetime of the process.
type Store map[string]Secret

// Get returns the secret for name.
func (s Store) Get(name string) (Secret, bool) {
	sec, ok := s[name]
	return sec, ok
}

// Value returns the secret value for name, or "" when absent.
func (s Store) Value(name string) string {
	return s[name].Value
}

// LookupFunc reports the value of a named variable, environment-style.
type LookupFunc func(name string) (string, bool)

// PromptFunc asks the operator for a secret value. Implementations must not
// echo the entered value.
type PromptFunc func(name string) (string, error)

// Resolver resolves required secrets from a lookup source with an optional
// interactive fallback.
type Resolver struct {
	lookup LookupFunc
	prompt PromptFunc
	log    *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup replaces the environment lookup. Used by tests.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) { r.lookup = fn }
}

// WithPrompt replaces the interactive prompt. Used by tests.
func WithPrompt(fn PromptFunc) Option {
	return func(r *Resolver) { r.prompt = fn }
}

// NewResolver creates a Resolver backed by the process environment and a
// non-echoing terminal prompt.
func NewResolver(log *logging.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		lookup: os.LookupEnv,
		prompt: terminalPrompt,
		log:    log.Sub("secrets"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a Store containing every required secret, prompting at
// most once per missing secret when interactive is true and the requirement
// allows it. The first unresolvable secret aborts with
// MissingCredentialError; no partial prompting continues past it.
func (r *Resolver) Resolve(reqs []Requirement, interactive bool) (Store, error) {
	store := make(Store, len(reqs))

	for _, req := range reqs {
		if sec, ok := store[req.Name]; ok && sec.Value != "" {
			continue
		}

		if val, ok := r.lookup(req.Name); ok && val != "" {
			store[req.Name] = Secret{Name: req.Name, Value: val}
			r.log.Debug().Str("name", req.Name).Msg("credential resolved from environment")
			continue
		}

		if !interactive || !req.AllowPrompt {
			return nil, &MissingCredentialError{Name: req.Name}
		}

		entered, err := r.prompt(req.Name)
		if err != nil {
			return nil, fmt.Errorf("prompting for %s: %w", req.Name, err)
		}
		entered = strings.TrimSpace(entered)
		if entered == "" {
			return nil, &MissingCredentialError{Name: req.Name}
		}

		store[req.Name] = Secret{Name: req.Name, Value: entered, FromPrompt: true}
		r.log.Debug().Str("name", req.Name).Msg("credential resolved from prompt")
	}

	return store, nil
}

// terminalPrompt reads a secret from the terminal with echo suppressed.
func terminalPrompt(name string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter value for %s: ", name)
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(value), nil
}
