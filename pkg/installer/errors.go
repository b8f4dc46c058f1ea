package installer

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies terminal installation failures. Every expected failure is
// recovered at the installer boundary into one of these; only genuinely
// unexpected conditions propagate unclassified.
type Kind string

const (
	// KindInvalidInput covers bad slugs, agents, and scopes. Never retried,
	// never reaches the network.
	KindInvalidInput Kind = "invalid_input"
	// KindRegistryUnavailable covers registry fetch and parse failures.
	KindRegistryUnavailable Kind = "registry_unavailable"
	// KindSkillNotFoundInRegistry means the registry has no such skill id.
	KindSkillNotFoundInRegistry Kind = "skill_not_found_in_registry"
	// KindArchiveFetchFailed covers transport-level archive failures. These
	// never trigger fallback discovery.
	KindArchiveFetchFailed Kind = "archive_fetch_failed"
	// KindSkillNotFoundInArchive means fallback discovery found no match.
	KindSkillNotFoundInArchive Kind = "skill_not_found_in_archive"
	// KindAmbiguousSkillLocation means fallback discovery found several matches.
	KindAmbiguousSkillLocation Kind = "ambiguous_skill_location"
	// KindInstallationIncomplete means extraction reported success but the
	// destination ended up empty; the destination has been removed.
	KindInstallationIncomplete Kind = "installation_incomplete"
	// KindDestinationExists means the destination already exists. Detected
	// before any network call; nothing is created or removed.
	KindDestinationExists Kind = "destination_exists"
)

// Error is a classified terminal installation failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure classification of err, or "" when err carries none.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func classified(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
