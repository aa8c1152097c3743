// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	service "github.com/okian/pushlog/internal/app"
	"github.com/okian/pushlog/internal/domain/translator"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestrator implementation.
type Dependencies interface {
	CreateDigest(ctx context.Context, description *string) (service.Digest, error)
	GetDigest(ctx context.Context, digestID string) (service.Digest, error)
	CreateInbox(ctx context.Context, digestID string, in service.InboxInput) (service.Inbox, error)
	GetInbox(ctx context.Context, inboxID string) (service.Inbox, error)
	ListInboxes(ctx context.Context, digestID string) (service.InboxList, error)
	IngestCommits(ctx context.Context, inboxID string, sig translator.Signal, payload []byte) (service.CommitAck, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	digestsHandler *DigestsHandler
	inboxesHandler *InboxesHandler
	commitsHandler *CommitsHandler
	healthHandler  *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		digestsHandler: NewDigestsHandler(deps),
		inboxesHandler: NewInboxesHandler(deps),
		commitsHandler: NewCommitsHandler(deps),
		healthHandler:  NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /digests", MetricsMiddleware(s.digestsHandler.HandleCreateDigest, "digests_create"))
	mux.HandleFunc("GET /digests/{digestId}", MetricsMiddleware(s.digestsHandler.HandleGetDigest, "digests_get"))
	mux.HandleFunc("POST /digests/{digestId}/inboxes", MetricsMiddleware(s.inboxesHandler.HandleCreateInbox, "inboxes_create"))
	mux.HandleFunc("GET /digests/{digestId}/inboxes", MetricsMiddleware(s.inboxesHandler.HandleListInboxes, "inboxes_list"))
	mux.HandleFunc("GET /inboxes/{inboxId}", MetricsMiddleware(s.inboxesHandler.HandleGetInbox, "inboxes_get"))
	mux.HandleFunc("POST /inboxes/{inboxId}/commits", MetricsMiddleware(s.commitsHandler.HandleIngestCommits, "commits_create"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
}

// digestRequest mirrors the JSON body of POST /digests. A pointer
// distinguishes an absent description from a blank one.
type digestRequest struct {
	Description *string `json:"description"`
}

// inboxRequest mirrors the JSON body of POST /digests/{digestId}/inboxes.
type inboxRequest struct {
	Family string `json:"family"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeHAL writes a hypermedia resource body.
func writeHAL(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/hal+json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// requireJSON enforces an application/json request body on write endpoints.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || ct != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", ErrUnsupportedMediaType)
		return false
	}
	return true
}
