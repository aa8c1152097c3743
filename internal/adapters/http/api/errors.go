package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/pushlog/internal/app"
	"github.com/okian/pushlog/internal/domain/event"
	"github.com/okian/pushlog/internal/domain/translator"
	"github.com/okian/pushlog/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest           = errors.New("bad request")
	ErrUnsupportedMediaType = errors.New("request body must be application/json")
	ErrPayloadNotTranslated = errors.New("the webhook payload could not be translated")
)

// writeDomainError maps orchestrator and domain errors onto HTTP statuses.
// Validation failures echo every violated rule; store failures answer with
// a generic 500 and the original error goes to the log instead.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *event.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "validation_failed",
			Message: verr.Error(),
			Errors:  verr.Violations,
		})
		return
	}

	var ierr *service.InvalidIdentifierError
	if errors.As(err, &ierr) {
		writeError(w, http.StatusBadRequest, "bad_request", ierr)
		return
	}

	var uerr *service.UnknownEntityError
	if errors.As(err, &uerr) {
		writeError(w, http.StatusNotFound, "not_found", uerr)
		return
	}

	if errors.Is(err, service.ErrMissingEventTypeHeader) || errors.Is(err, translator.ErrUnsupportedProvider) {
		writeError(w, http.StatusBadRequest, "unsupported_provider", err)
		return
	}

	var terr *translator.TranslationError
	if errors.As(err, &terr) {
		// The offending payload is already logged upstream; never echo it.
		writeError(w, http.StatusBadRequest, "translation_failed", ErrPayloadNotTranslated)
		return
	}

	logger.Get().Named("api").Error(ctx, "request failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", nil)
}
