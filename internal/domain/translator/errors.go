package translator

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider signals that no registered translator recognizes
// the inbound request. The caller must not guess a provider.
var ErrUnsupportedProvider = errors.New("no translator recognizes this request")

// TranslationError reports a malformed payload from a recognized provider.
// It keeps the original payload for diagnostics; the payload is logged, not
// echoed to clients.
type TranslationError struct {
	Provider string
	Payload  []byte
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s payload could not be translated: %v", e.Provider, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
