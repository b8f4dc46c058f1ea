package archive

import (
	"strings"
)

// SkillFileName is the instruction file that marks a skill directory.
const SkillFileName = "SKILL.md"

// MaxDiscoveryCandidates caps fallback scanning. An archive producing more
// matches than this is treated as ambiguous without collecting the rest.
const MaxDiscoveryCandidates = 16

// ResolveSkillDir searches a full archive member listing for the unique
// directory holding <skillID>/SKILL.md under rootDir. Zero matches yield
// *SkillNotFoundError; more than one yields *AmbiguousLocationError listing
// every candidate found. Both are terminal: the caller must not guess.
func ResolveSkillDir(members []string, rootDir, skillID string) (string, error) {
	suffix := "/" + skillID + "/" + SkillFileName

	var candidates []string
	for _, m := range members {
		name := cleanMemberName(m)
		if name != rootDir && !strings.HasPrefix(name, rootDir+"/") {
			continue
		}
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		candidates = append(candidates, strings.TrimSuffix(name, "/"+SkillFileName))
		if len(candidates) > MaxDiscoveryCandidates {
			break
		}
	}

	switch len(candidates) {
	case 0:
		return "", &SkillNotFoundError{SkillID: skillID}
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousLocationError{SkillID: skillID, Candidates: candidates}
	}
}
