// Package agents maps AI agent names to the directories where each agent
// looks for installed skills, for both project-local and user-global scope.
package agents

import (
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// DefaultAgent is used when no --agent flag is given.
const DefaultAgent = "claude"

// Scope selects the project-local or user-global skills root.
type Scope string

const (
	// ScopeProject installs under the current project directory.
	ScopeProject Scope = "project"
	// ScopeGlobal installs under the user home directory.
	ScopeGlobal Scope = "global"
)

// ParseScope validates a scope string.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeProject, ScopeGlobal:
		return Scope(s), nil
	default:
		return "", errors.Errorf("invalid scope %q: expected 'project' or 'global'", s)
	}
}

// Agent describes where one AI agent keeps its skills.
type Agent struct {
	Name       string
	ProjectDir string // relative to the working directory
	GlobalDir  string // relative to the user home directory
}

var known = map[string]Agent{
	"claude":  {Name: "claude", ProjectDir: filepath.Join(".claude", "skills"), GlobalDir: filepath.Join(".claude", "skills")},
	"codex":   {Name: "codex", ProjectDir: filepath.Join(".codex", "skills"), GlobalDir: filepath.Join(".codex", "skills")},
	"copilot": {Name: "copilot", ProjectDir: filepath.Join(".github", "skills"), GlobalDir: filepath.Join(".copilot", "skills")},
	"cursor":  {Name: "cursor", ProjectDir: filepath.Join(".cursor", "skills"), GlobalDir: filepath.Join(".cursor", "skills")},
	"gemini":  {Name: "gemini", ProjectDir: filepath.Join(".gemini", "skills"), GlobalDir: filepath.Join(".gemini", "skills")},
}

// Lookup returns the agent definition for name.
func Lookup(name string) (Agent, error) {
	agent, ok := known[name]
	if !ok {
		return Agent{}, errors.Errorf("unknown agent %q: expected one of %v", name, Names())
	}
	return agent, nil
}

// Names returns the known agent names, sorted.
func Names() []string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SkillsRoot resolves the skills root directory for the given scope.
func (a Agent) SkillsRoot(scope Scope, workDir, homeDir string) string {
	if scope == ScopeGlobal {
		return filepath.Join(homeDir, a.GlobalDir)
	}
	return filepath.Join(workDir, a.ProjectDir)
}
