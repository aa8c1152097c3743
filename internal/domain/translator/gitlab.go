package translator

import (
	_ "embed"
	"encoding/json"

	"github.com/okian/pushlog/internal/domain/event"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/gitlab-push.json
var gitLabPushSchema string

// gitLabPushHook is the X-Gitlab-Event value for push webhooks.
const gitLabPushHook = "Push Hook"

// GitLab translates GitLab push webhooks.
type GitLab struct {
	schema *jsonschema.Schema
}

// NewGitLab creates the GitLab translator.
func NewGitLab() *GitLab {
	return &GitLab{schema: mustCompile("gitlab-push.json", gitLabPushSchema)}
}

// Name returns the provider family tag.
func (g *GitLab) Name() string { return event.FamilyGitLab }

// CanTranslate matches GitLab push deliveries by their event-type header.
func (g *GitLab) CanTranslate(sig Signal) bool {
	return sig.GitLabEvent == gitLabPushHook
}

type gitLabPush struct {
	Ref     string `json:"ref"`
	Project struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	Commits []json.RawMessage `json:"commits"`
}

type gitLabCommit struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	URL       string          `json:"url"`
	Author    json.RawMessage `json:"author"`
}

type gitLabAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TranslatePush maps each commit in a GitLab push payload to one
// GitLabCommitReceived event. GitLab reports no separate committer, so the
// author doubles as one.
func (g *GitLab) TranslatePush(payload []byte, instanceID, digestID, inboxID string) ([]event.Event, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
	}
	if err := g.schema.Validate(doc); err != nil {
		return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
	}

	var push gitLabPush
	if err := json.Unmarshal(payload, &push); err != nil {
		return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
	}

	branch := branchOf(push.Ref)
	repo := event.Repository{ID: push.Project.ID, Name: push.Project.Name}

	events := make([]event.Event, 0, len(push.Commits))
	for _, raw := range push.Commits {
		var c gitLabCommit
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
		}
		var author gitLabAuthor
		if err := json.Unmarshal(c.Author, &author); err != nil {
			return nil, &TranslationError{Provider: g.Name(), Payload: payload, Err: err}
		}
		data := event.CommitData{
			Sha: c.ID,
			Commit: event.CommitDetail{
				Author: c.Author,
				Committer: event.Signature{
					Name:  author.Name,
					Email: author.Email,
					Date:  c.Timestamp,
				},
				Message: c.Message,
			},
			HTMLURL:    c.URL,
			Repository: repo,
			Branch:     branch,
			Original:   raw,
		}
		events = append(events, event.NewCommitReceived(event.TypeGitLabCommitReceived, data, digestID))
	}
	return events, nil
}
