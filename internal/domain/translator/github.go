package translator

import (
	_ "embed"
	"encoding/json"

	"github.com/okian/pushlog/internal/domain/event"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/github-push.json
var gitHubPushSchema string

// GitHub translates GitHub push webhooks.
type GitHub struct {
	schema *jsonschema.Schema
}

// NewGitHub creates the GitHub translator.
func NewGitHub() *GitHub {
	return &GitHub{schema: mustCompile("github-push.json", gitHubPushSchema)}
}

// Name returns the provider family tag.
func (g *GitHub) Name() string { return event.FamilyGitHub }

// CanTranslate matches GitHub push deliveries by their event-type header.
func (g *GitHub) CanTranslate(sig Signal) bool {
	return sig.GitHubEvent == "push"
}

type gitHubPush struct {
	Ref        string `json:"ref"`
	Repository struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"repository"`
	Commits []json.RawMessage `json:"commits"`
}

type gitHubCommit struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	URL       string          `json:"url"`
	Author    json.RawMessage `json:"author"`
	Committer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"committer"`
}

// TranslatePush maps each commit in a GitHub push payload to one
// GitHubCommitReceived event.
func (g *GitHub) TranslatePush(payload []byte, instanceID, digestID, inboxID string) ([]event.Event, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
	}
	if err := g.schema.Validate(doc); err != nil {
		return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
	}

	var push gitHubPush
	if err := json.Unmarshal(payload, &push); err != nil {
		return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
	}

	branch := branchOf(push.Ref)
	repo := event.Repository{ID: push.Repository.ID, Name: push.Repository.Name}

	events := make([]event.Event, 0, len(push.Commits))
	for _, raw := range push.Commits {
		var c gitHubCommit
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
		}
		data := event.CommitData{
			Sha: c.ID,
			Commit: event.CommitDetail{
				Author: c.Author,
				Committer: event.Signature{
					Name:  c.Committer.Name,
					Email: c.Committer.Email,
					Date:  c.Timestamp,
				},
				Message: c.Message,
			},
			HTMLURL:    c.URL,
			Repository: repo,
			Branch:     branch,
			Original:   raw,
		}
		events = append(events, event.NewCommitReceived(event.TypeGitHubCommitReceived, data, digestID))
	}
	return events, nil
}
