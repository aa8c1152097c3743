package api

import (
	"context"
	"io"
	"net/http"

	service "github.com/okian/pushlog/internal/app"
	"github.com/okian/pushlog/internal/domain/translator"
)

// maxWebhookBody bounds an inbound webhook payload.
const maxWebhookBody = 5 << 20

// CommitDependencies defines the interface for webhook ingestion.
type CommitDependencies interface {
	IngestCommits(ctx context.Context, inboxID string, sig translator.Signal, payload []byte) (service.CommitAck, error)
}

// CommitsHandler handles inbound provider webhooks.
type CommitsHandler struct {
	deps CommitDependencies
}

// NewCommitsHandler creates a new commits handler.
func NewCommitsHandler(deps CommitDependencies) *CommitsHandler {
	return &CommitsHandler{deps: deps}
}

type commitAckResponse struct {
	Status   string `json:"status"`
	InboxID  string `json:"inboxId,omitempty"`
	DigestID string `json:"digestId,omitempty"`
	Events   int    `json:"events"`
}

// HandleIngestCommits handles POST /inboxes/{inboxId}/commits requests.
// The provider identifies itself through its event-type header; the body
// is passed through to translation untouched.
func (h *CommitsHandler) HandleIngestCommits(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	sig := translator.Signal{
		GitHubEvent: r.Header.Get("X-GitHub-Event"),
		GitLabEvent: r.Header.Get("X-GitLab-Event"),
	}

	ack, err := h.deps.IngestCommits(r.Context(), r.PathValue("inboxId"), sig, payload)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	if ack.Ping {
		writeJSON(w, http.StatusOK, commitAckResponse{Status: "ok", InboxID: ack.InboxID})
		return
	}
	writeJSON(w, http.StatusAccepted, commitAckResponse{
		Status:   "accepted",
		InboxID:  ack.InboxID,
		DigestID: ack.DigestID,
		Events:   ack.EventCount,
	})
}
