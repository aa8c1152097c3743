// Package event defines the canonical event shapes appended to the store
// and the factories that construct validated instances.
package event

import "encoding/json"

// Event type tags. The tag identifies the schema variant carried in Data.
const (
	TypeDigestAdded          = "DigestAdded"
	TypeInboxAdded           = "InboxAdded"
	TypeGitHubCommitReceived = "GitHubCommitReceived"
	TypeGitLabCommitReceived = "GitLabCommitReceived"
)

// Event is the canonical, write-once envelope appended to a stream.
type Event struct {
	EventID   string   `json:"eventId"`
	EventType string   `json:"eventType"`
	Data      any      `json:"data"`
	Metadata  Metadata `json:"metadata"`
}

// Metadata carries cross-cutting context for an event.
type Metadata struct {
	DigestID string `json:"digestId"`
}

// DigestData is the payload of a DigestAdded event.
type DigestData struct {
	DigestID    string `json:"digestId"`
	Description string `json:"description"`
}

// InboxData is the payload of an InboxAdded event.
type InboxData struct {
	InboxID  string `json:"inboxId"`
	DigestID string `json:"digestId"`
	Family   string `json:"family"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
}

// CommitData is the payload of a translated commit event. Normalized fields
// sit next to the verbatim upstream commit object so later consumers can
// reach anything the normalization dropped.
type CommitData struct {
	Sha        string          `json:"sha"`
	Commit     CommitDetail    `json:"commit"`
	HTMLURL    string          `json:"html_url"`
	Repository Repository      `json:"repository"`
	Branch     string          `json:"branch"`
	Original   json.RawMessage `json:"originalMessage"`
}

// CommitDetail carries the normalized commit fields. The author object is
// passed through verbatim; providers disagree on its shape.
type CommitDetail struct {
	Author    json.RawMessage `json:"author"`
	Committer Signature       `json:"committer"`
	Message   string          `json:"message"`
}

// Signature identifies a committer.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date,omitempty"`
}

// Repository identifies the upstream repository a commit belongs to.
type Repository struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
