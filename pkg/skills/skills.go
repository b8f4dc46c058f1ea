// Package skills inspects installed skills. A skill is a directory under an
// agent's skills root whose SKILL.md frontmatter names and describes it; a
// directory without a readable SKILL.md is still listed so a broken install
// stays visible.
package skills

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/agents"
	"github.com/xskills/xskills/pkg/archive"
	"github.com/xskills/xskills/pkg/registry"
)

// Skill is one installed skill.
type Skill struct {
	// ID is the installation directory name.
	ID string
	// Name is the frontmatter name; it may differ from ID.
	Name        string
	Description string
	// Directory is the full path to the installed skill.
	Directory string
}

// Discovery lists installed skills across one or more skills roots.
type Discovery struct {
	roots []string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithRoots sets explicit skills roots, earliest taking precedence on
// duplicate ids.
func WithRoots(dirs ...string) Option {
	return func(d *Discovery) error {
		d.roots = append(d.roots, dirs...)
		return nil
	}
}

// WithAgentScope adds the skills root for an agent and scope. An empty
// workDir means the current directory; an empty homeDir means the user home
// directory.
func WithAgentScope(agentName, scopeName, workDir, homeDir string) Option {
	return func(d *Discovery) error {
		if agentName == "" {
			agentName = agents.DefaultAgent
		}
		agent, err := agents.Lookup(agentName)
		if err != nil {
			return err
		}

		if scopeName == "" {
			scopeName = string(agents.ScopeProject)
		}
		scope, err := agents.ParseScope(scopeName)
		if err != nil {
			return err
		}

		if workDir == "" {
			workDir = "."
		}
		if homeDir == "" {
			homeDir, err = os.UserHomeDir()
			if err != nil {
				return errors.Wrap(err, "resolving home directory")
			}
		}

		d.roots = append(d.roots, agent.SkillsRoot(scope, workDir, homeDir))
		return nil
	}
}

// NewDiscovery creates a Discovery from the given options.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if len(d.roots) == 0 {
		return nil, errors.New("no skills roots configured")
	}
	return d, nil
}

// Discover returns the installed skills across all roots, sorted by id. A
// missing root contributes nothing; on duplicate ids the earliest root wins.
func (d *Discovery) Discover() ([]Skill, error) {
	seen := make(map[string]struct{})
	var found []Skill

	for _, root := range d.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "reading skills root %s", root)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, dup := seen[entry.Name()]; dup {
				continue
			}
			seen[entry.Name()] = struct{}{}
			found = append(found, inspect(entry.Name(), filepath.Join(root, entry.Name())))
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

// inspect reads the skill's SKILL.md for its name and description. An
// unreadable or malformed SKILL.md leaves the metadata empty.
func inspect(id, dir string) Skill {
	skill := Skill{ID: id, Directory: dir}

	data, err := os.ReadFile(filepath.Join(dir, archive.SkillFileName))
	if err != nil {
		return skill
	}

	parsed, err := registry.ParseSkillFile(data)
	if err != nil {
		return skill
	}
	skill.Name = parsed.Name
	skill.Description = parsed.Description
	return skill
}
