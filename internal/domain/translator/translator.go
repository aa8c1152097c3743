// Package translator converts provider-specific webhook payloads into
// canonical events. One translator exists per supported provider; a
// registry picks the first translator that recognizes an inbound request.
package translator

import (
	"strings"

	"github.com/okian/pushlog/internal/domain/event"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Signal is the provider-identifying surface of an inbound webhook request.
// Extend with one field per supported provider header.
type Signal struct {
	// GitHubEvent is the value of the X-GitHub-Event header.
	GitHubEvent string
	// GitLabEvent is the value of the X-Gitlab-Event header.
	GitLabEvent string
}

// HasProviderHeader reports whether any provider header is present at all.
func (s Signal) HasProviderHeader() bool {
	return s.GitHubEvent != "" || s.GitLabEvent != ""
}

// IsPing reports whether the request is a provider health probe. Only
// GitHub sends one.
func (s Signal) IsPing() bool {
	return s.GitHubEvent == "ping"
}

// Translator converts one provider's push payloads into canonical events.
type Translator interface {
	// Name returns the provider family tag, e.g. "GitHub".
	Name() string

	// CanTranslate reports whether this translator recognizes the request.
	// It must be a pure function of the signal.
	CanTranslate(sig Signal) bool

	// TranslatePush maps each upstream commit in payload to exactly one
	// canonical event. Translation is all-or-nothing: a malformed payload
	// yields a *TranslationError and no events.
	TranslatePush(payload []byte, instanceID, digestID, inboxID string) ([]event.Event, error)
}

// Registry holds translators in declared priority order.
type Registry struct {
	translators []Translator
}

// NewRegistry builds a registry that tries translators in the given order.
func NewRegistry(translators ...Translator) *Registry {
	return &Registry{translators: translators}
}

// Default returns the registry of built-in translators.
func Default() *Registry {
	return NewRegistry(NewGitHub(), NewGitLab())
}

// Select returns the first translator whose CanTranslate matches, or
// ErrUnsupportedProvider when none does.
func (r *Registry) Select(sig Signal) (Translator, error) {
	for _, t := range r.translators {
		if t.CanTranslate(sig) {
			return t, nil
		}
	}
	return nil, ErrUnsupportedProvider
}

// mustCompile compiles an embedded payload schema. Schemas ship with the
// binary, so a compile failure is a programming error.
func mustCompile(name, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := "https://pushlog.schemas.local/" + name
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return c.MustCompile(url)
}

// branchOf extracts the branch as the last path segment of a ref.
func branchOf(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}
