package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/pushlog/internal/app"
)

// InboxDependencies defines the interface for inbox operations.
type InboxDependencies interface {
	CreateInbox(ctx context.Context, digestID string, in service.InboxInput) (service.Inbox, error)
	GetInbox(ctx context.Context, inboxID string) (service.Inbox, error)
	ListInboxes(ctx context.Context, digestID string) (service.InboxList, error)
}

// InboxesHandler handles inbox requests.
type InboxesHandler struct {
	deps InboxDependencies
}

// NewInboxesHandler creates a new inboxes handler.
func NewInboxesHandler(deps InboxDependencies) *InboxesHandler {
	return &InboxesHandler{deps: deps}
}

// HandleCreateInbox handles POST /digests/{digestId}/inboxes requests.
func (h *InboxesHandler) HandleCreateInbox(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req inboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	in, err := h.deps.CreateInbox(r.Context(), r.PathValue("digestId"), service.InboxInput{
		Family: req.Family,
		Name:   req.Name,
		URL:    req.URL,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	body := inboxHAL(in)
	body.Status = "accepted"
	w.Header().Set("Location", body.Links["self"].Href)
	writeHAL(w, http.StatusCreated, body)
}

// HandleGetInbox handles GET /inboxes/{inboxId} requests.
func (h *InboxesHandler) HandleGetInbox(w http.ResponseWriter, r *http.Request) {
	in, err := h.deps.GetInbox(r.Context(), r.PathValue("inboxId"))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeHAL(w, http.StatusOK, inboxHAL(in))
}

// HandleListInboxes handles GET /digests/{digestId}/inboxes requests.
func (h *InboxesHandler) HandleListInboxes(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListInboxes(r.Context(), r.PathValue("digestId"))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeHAL(w, http.StatusOK, inboxListHAL(list))
}
