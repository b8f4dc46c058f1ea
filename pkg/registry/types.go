// Package registry defines the skill metadata model, the generated registry
// documents, and the client that fetches them. Metadata records are small
// hand-maintained YAML files; the registry documents are derived JSON views
// over those records plus the materialized cache contents.
package registry

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// SpecVersion identifies the registry document format.
const SpecVersion = "1"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSkillID checks that id is a well-formed slug: lowercase
// alphanumerics and single interior hyphens.
func ValidateSkillID(id string) error {
	if id == "" {
		return errors.New("skill id cannot be empty")
	}
	if !slugPattern.MatchString(id) {
		return errors.Errorf("invalid skill id %q: expected lowercase alphanumerics and hyphens", id)
	}
	return nil
}

// Source identifies where a skill's files live in source control.
type Source struct {
	Repo         string `json:"repo" yaml:"repo"`
	Path         string `json:"path" yaml:"path"`
	Ref          string `json:"ref" yaml:"ref"`
	SyncedCommit string `json:"syncedCommit,omitempty" yaml:"syncedCommit,omitempty"`
}

// OwnerRepo parses the source repo URL into its owner and repository name.
func (s Source) OwnerRepo() (owner, repo string, err error) {
	u, err := url.Parse(s.Repo)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing source repo %q", s.Repo)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("source repo %q: expected https://<host>/<owner>/<repo>", s.Repo)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Key returns the cache key triple for this source. Cache validity is exact
// byte equality of all three fields.
func (s Source) Key() [3]string {
	return [3]string{s.Repo, s.Ref, s.Path}
}

// SkillMetadata is one per-skill record. Records are created when a
// maintainer approves an import and are only ever mutated by the registry
// build's timestamp backfill and by re-import.
type SkillMetadata struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source      Source   `json:"source" yaml:"source"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Validate checks that the record has every required field and a well-formed id.
func (m *SkillMetadata) Validate() error {
	if err := ValidateSkillID(m.ID); err != nil {
		return err
	}
	if m.Title == "" {
		return errors.Errorf("skill %s: title is required", m.ID)
	}
	if m.Description == "" {
		return errors.Errorf("skill %s: description is required", m.ID)
	}
	if m.Category == "" {
		return errors.Errorf("skill %s: category is required", m.ID)
	}
	if m.Source.Repo == "" || m.Source.Path == "" || m.Source.Ref == "" {
		return errors.Errorf("skill %s: source repo, path, and ref are required", m.ID)
	}
	return nil
}

// IndexSkill is one entry in index.json: full metadata plus the materialized
// file listing from the cache.
type IndexSkill struct {
	SkillMetadata `yaml:",inline"`
	Files         []string `json:"files" yaml:"files"`
}

// Index is the main registry document.
type Index struct {
	SpecVersion string       `json:"specVersion"`
	GeneratedAt string       `json:"generatedAt"`
	Skills      []IndexSkill `json:"skills"`
}

// FindSkill looks up a skill by id.
func (i *Index) FindSkill(id string) (*IndexSkill, bool) {
	for idx := range i.Skills {
		if i.Skills[idx].ID == id {
			return &i.Skills[idx], true
		}
	}
	return nil, false
}

// Categories is the derived category listing document.
type Categories struct {
	SpecVersion string   `json:"specVersion"`
	GeneratedAt string   `json:"generatedAt"`
	Categories  []string `json:"categories"`
}

// SearchDoc is one search-index entry for the site's client-side search.
type SearchDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Content     string   `json:"content,omitempty"`
}

// SearchIndex is the derived search document collection.
type SearchIndex struct {
	SpecVersion string      `json:"specVersion"`
	GeneratedAt string      `json:"generatedAt"`
	Docs        []SearchDoc `json:"docs"`
}
