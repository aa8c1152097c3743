package event

import "strings"

// ValidationError reports every rule a malformed input violated, so the
// caller can surface all problems at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, " ")
}
