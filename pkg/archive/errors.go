package archive

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrMemberMissing indicates the requested member path was not present in
// the archive. This is the one extraction failure that justifies fallback
// discovery; transport failures never do.
var ErrMemberMissing = errors.New("archive member not found")

// FetchError indicates the tarball could not be retrieved from the archive
// service.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractError indicates decompression or extraction failed for the
// requested member path.
type ExtractError struct {
	Member string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Member, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// IsMemberMissing reports whether err represents an extraction failure
// caused by the requested member being absent from the archive.
func IsMemberMissing(err error) bool {
	return errors.Is(err, ErrMemberMissing)
}

// SkillNotFoundError indicates fallback discovery found no SKILL.md for the
// skill anywhere in the archive. Terminal: there is nothing further to try.
type SkillNotFoundError struct {
	SkillID string
}

func (e *SkillNotFoundError) Error() string {
	return fmt.Sprintf("skill %q not found in archive", e.SkillID)
}

// AmbiguousLocationError indicates fallback discovery matched more than one
// directory. The tool must not guess; a maintainer has to disambiguate.
type AmbiguousLocationError struct {
	SkillID    string
	Candidates []string
}

func (e *AmbiguousLocationError) Error() string {
	return fmt.Sprintf("skill %q matches multiple archive directories: %s",
		e.SkillID, strings.Join(e.Candidates, ", "))
}
