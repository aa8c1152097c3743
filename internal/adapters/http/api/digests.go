package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/pushlog/internal/app"
)

// DigestDependencies defines the interface for digest operations.
type DigestDependencies interface {
	CreateDigest(ctx context.Context, description *string) (service.Digest, error)
	GetDigest(ctx context.Context, digestID string) (service.Digest, error)
}

// DigestsHandler handles digest requests.
type DigestsHandler struct {
	deps DigestDependencies
}

// NewDigestsHandler creates a new digests handler.
func NewDigestsHandler(deps DigestDependencies) *DigestsHandler {
	return &DigestsHandler{deps: deps}
}

// HandleCreateDigest handles POST /digests requests.
func (h *DigestsHandler) HandleCreateDigest(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req digestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	d, err := h.deps.CreateDigest(r.Context(), req.Description)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	body := digestHAL(d)
	body.Status = "accepted"
	w.Header().Set("Location", body.Links["self"].Href)
	writeHAL(w, http.StatusCreated, body)
}

// HandleGetDigest handles GET /digests/{digestId} requests.
func (h *DigestsHandler) HandleGetDigest(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.GetDigest(r.Context(), r.PathValue("digestId"))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeHAL(w, http.StatusOK, digestHAL(d))
}
