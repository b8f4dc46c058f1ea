// Package archive resolves skills inside remote repository tarballs and
// extracts them through a streaming fetch/decompress pipeline. Nothing in
// this package buffers a whole archive in memory or on disk.
package archive

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the codeload-style archive service serving GitHub tarballs.
const DefaultBaseURL = "https://codeload.github.com"

// Segments is a list of path segments with a total depth function. Path
// arithmetic (strip components, member depth) goes through this type rather
// than raw string surgery.
type Segments []string

// SplitSegments splits a repo-relative slash path into segments. "." and ""
// yield zero segments.
func SplitSegments(p string) Segments {
	p = path.Clean(strings.TrimSpace(p))
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// Depth returns the number of segments.
func (s Segments) Depth() int {
	return len(s)
}

// Join renders the segments back into a slash path.
func (s Segments) Join() string {
	return strings.Join(s, "/")
}

// Location identifies a skill subtree inside a remote tarball. It is derived
// from registry metadata and may be stale; fallback discovery corrects it.
type Location struct {
	TarballURL      string
	RootDir         string
	MemberPath      string
	StripComponents int
}

// Locator computes tarball locations for skills hosted on a codeload-style
// archive service.
type Locator struct {
	// BaseURL overrides the archive service endpoint. Empty means DefaultBaseURL.
	BaseURL string
}

// Locate computes the expected location of a skill subtree. It is a pure
// function: the only rejected input is an empty skill path.
func (l Locator) Locate(owner, repo, ref, skillPath string) (Location, error) {
	if strings.TrimSpace(skillPath) == "" {
		return Location{}, errors.New("skill path cannot be empty")
	}

	base := l.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	rootDir := fmt.Sprintf("%s-%s", repo, SanitizeRef(ref))
	segs := SplitSegments(skillPath)

	member := rootDir
	if segs.Depth() > 0 {
		member = rootDir + "/" + segs.Join()
	}

	return Location{
		TarballURL:      fmt.Sprintf("%s/%s/%s/tar.gz/%s", strings.TrimSuffix(base, "/"), owner, repo, ref),
		RootDir:         rootDir,
		MemberPath:      member,
		StripComponents: segs.Depth() + 1, // +1 strips the archive root directory
	}, nil
}

// SanitizeRef converts a git ref into the form the archive service uses for
// the tarball root directory name: slashes and other unsafe characters
// become hyphens.
func SanitizeRef(ref string) string {
	var b strings.Builder
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
