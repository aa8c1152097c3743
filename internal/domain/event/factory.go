package event

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// maxDescriptionLength bounds a digest description, in characters.
const maxDescriptionLength = 140

// Families of supported webhook providers.
const (
	FamilyGitHub = "GitHub"
	FamilyGitLab = "GitLab"
)

// stripPolicy removes every HTML element, mirroring the markup rule on
// user-supplied text fields.
var stripPolicy = bluemonday.StrictPolicy()

// NewDigestAdded validates a digest description and constructs the
// DigestAdded event. A nil description distinguishes an absent field from
// a blank one. All violated rules are reported at once.
func NewDigestAdded(description *string) (Event, error) {
	var violations []string
	switch {
	case description == nil:
		violations = append(violations, "A digest must contain a description.")
	case strings.TrimSpace(*description) == "":
		violations = append(violations, "A digest description must contain a value.")
	default:
		d := *description
		if stripPolicy.Sanitize(d) != d {
			violations = append(violations, "A digest description cannot contain script tags or HTML.")
		}
		if n := utf8.RuneCountInString(d); n > maxDescriptionLength {
			violations = append(violations, fmt.Sprintf(
				"A digest description cannot contain more than %d characters. The description you submitted contains %d characters.",
				maxDescriptionLength, n))
		}
	}
	if len(violations) > 0 {
		return Event{}, &ValidationError{Violations: violations}
	}

	digestID := uuid.NewString()
	return Event{
		EventID:   uuid.NewString(),
		EventType: TypeDigestAdded,
		Data:      DigestData{DigestID: digestID, Description: *description},
		Metadata:  Metadata{DigestID: digestID},
	}, nil
}

// NewInboxAdded validates inbox fields and constructs the InboxAdded event.
// All violated rules are reported at once.
func NewInboxAdded(digestID, family, name, url string) (Event, error) {
	var violations []string
	if uuid.Validate(digestID) != nil {
		violations = append(violations, fmt.Sprintf(
			"The value %q is not recognized as a valid digest identifier.", digestID))
	}
	if family != FamilyGitHub && family != FamilyGitLab {
		violations = append(violations, fmt.Sprintf(
			"An inbox family must be one of %s or %s.", FamilyGitHub, FamilyGitLab))
	}
	switch {
	case strings.TrimSpace(name) == "":
		violations = append(violations, "An inbox must contain a name.")
	case stripPolicy.Sanitize(name) != name:
		violations = append(violations, "An inbox name cannot contain script tags or HTML.")
	}
	if len(violations) > 0 {
		return Event{}, &ValidationError{Violations: violations}
	}

	return Event{
		EventID:   uuid.NewString(),
		EventType: TypeInboxAdded,
		Data: InboxData{
			InboxID:  uuid.NewString(),
			DigestID: digestID,
			Family:   family,
			Name:     name,
			URL:      url,
		},
		Metadata: Metadata{DigestID: digestID},
	}, nil
}

// NewCommitReceived wraps an already-translated commit payload in the
// canonical envelope with a fresh event id.
func NewCommitReceived(eventType string, data CommitData, digestID string) Event {
	return Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Data:      data,
		Metadata:  Metadata{DigestID: digestID},
	}
}
