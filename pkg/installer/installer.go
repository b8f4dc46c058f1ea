// Package installer sequences skill installation: input validation,
// registry metadata fetch, archive location, streaming extraction, and a
// one-shot fallback discovery when the registry's recorded path has gone
// stale. Every expected failure is classified (see errors.go) and the
// destination directory never survives a terminal error.
package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/agents"
	"github.com/xskills/xskills/pkg/archive"
	"github.com/xskills/xskills/pkg/logger"
	"github.com/xskills/xskills/pkg/registry"
)

// Options configure a single skill installation.
type Options struct {
	SkillID string
	Agent   string // empty means agents.DefaultAgent
	Scope   string // "project" or "global"; empty means project

	// RegistryURL is the precedence-resolved registry base URL
	// (registry.ResolveURL output).
	RegistryURL string
	// Ref overrides the ref recorded in the skill's registry metadata.
	Ref string

	// WorkDir roots project-scope installs; empty means the current directory.
	WorkDir string
	// HomeDir roots global-scope installs; empty means the user home directory.
	HomeDir string

	// ArchiveBaseURL overrides the codeload endpoint.
	ArchiveBaseURL string
}

// Result reports a completed installation.
type Result struct {
	SkillID      string
	Destination  string
	UsedFallback bool
}

// Installer installs skills from the registry into agent skill directories.
type Installer struct {
	newClient func(baseURL string) indexFetcher
}

type indexFetcher interface {
	FetchIndex(ctx context.Context) (*registry.Index, error)
}

// New creates an Installer.
func New() *Installer {
	return &Installer{
		newClient: func(baseURL string) indexFetcher {
			return registry.NewClient(baseURL)
		},
	}
}

// Install runs the installation pipeline for one skill. On any failure after
// the destination directory has been created, the destination is removed;
// the caller never finds a half-installed skill.
func (i *Installer) Install(ctx context.Context, opts Options) (result *Result, retErr error) {
	skillID := opts.SkillID
	if err := registry.ValidateSkillID(skillID); err != nil {
		return nil, classified(KindInvalidInput, err)
	}

	agentName := opts.Agent
	if agentName == "" {
		agentName = agents.DefaultAgent
	}
	agent, err := agents.Lookup(agentName)
	if err != nil {
		return nil, classified(KindInvalidInput, err)
	}

	scopeName := opts.Scope
	if scopeName == "" {
		scopeName = string(agents.ScopeProject)
	}
	scope, err := agents.ParseScope(scopeName)
	if err != nil {
		return nil, classified(KindInvalidInput, err)
	}

	dest, err := i.resolveDestination(agent, scope, opts, skillID)
	if err != nil {
		return nil, err
	}

	// No-clobber policy: checked before any network call.
	if _, err := os.Stat(dest); err == nil {
		return nil, classified(KindDestinationExists,
			errors.Errorf("skill %q is already installed at %s", skillID, dest))
	}

	log := logger.G(ctx).WithField("skill", skillID).WithField("agent", agent.Name).WithField("scope", scope)

	client := i.newClient(opts.RegistryURL)
	index, err := client.FetchIndex(ctx)
	if err != nil {
		return nil, classified(KindRegistryUnavailable, err)
	}

	skill, ok := index.FindSkill(skillID)
	if !ok {
		return nil, classified(KindSkillNotFoundInRegistry,
			errors.Errorf("skill %q not found in registry", skillID))
	}

	owner, repo, err := skill.Source.OwnerRepo()
	if err != nil {
		return nil, classified(KindRegistryUnavailable, err)
	}

	ref := skill.Source.Ref
	if opts.Ref != "" {
		ref = opts.Ref
	}

	locator := archive.Locator{BaseURL: opts.ArchiveBaseURL}
	loc, err := locator.Locate(owner, repo, ref, skill.Source.Path)
	if err != nil {
		return nil, classified(KindRegistryUnavailable, err)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating destination directory")
	}
	defer func() {
		if retErr != nil {
			os.RemoveAll(dest)
		}
	}()

	extractOpts := archive.ExtractOptions{ExcludeNames: []string{archive.MetadataFileName}}

	usedFallback := false
	err = archive.ExtractSubtree(ctx, loc.TarballURL, loc.MemberPath, loc.StripComponents, dest, extractOpts)
	if err != nil {
		if !archive.IsMemberMissing(err) {
			return nil, classified(KindArchiveFetchFailed, err)
		}

		// The registry's recorded path is stale. One fallback attempt: walk
		// the whole archive and search by skill id, never by the stale path.
		log.WithField("member", loc.MemberPath).Info("recorded path missing from archive, discovering")

		dir, derr := i.discover(ctx, loc, skillID)
		if derr != nil {
			return nil, derr
		}

		strip := archive.SplitSegments(dir).Depth()
		if err := archive.ExtractSubtree(ctx, loc.TarballURL, dir, strip, dest, extractOpts); err != nil {
			// A second failure is terminal: no further retries.
			if archive.IsMemberMissing(err) {
				return nil, classified(KindSkillNotFoundInArchive, err)
			}
			return nil, classified(KindArchiveFetchFailed, err)
		}
		usedFallback = true
	}

	empty, err := isEmptyDir(dest)
	if err != nil {
		return nil, errors.Wrap(err, "inspecting destination")
	}
	if empty {
		return nil, classified(KindInstallationIncomplete,
			errors.Errorf("extraction of %s produced no files", loc.MemberPath))
	}

	log.WithField("dest", dest).Info("skill installed")
	return &Result{SkillID: skillID, Destination: dest, UsedFallback: usedFallback}, nil
}

func (i *Installer) discover(ctx context.Context, loc archive.Location, skillID string) (string, error) {
	members, err := archive.ListMembers(ctx, loc.TarballURL)
	if err != nil {
		return "", classified(KindArchiveFetchFailed, err)
	}

	dir, err := archive.ResolveSkillDir(members, loc.RootDir, skillID)
	if err != nil {
		var ambiguous *archive.AmbiguousLocationError
		if errors.As(err, &ambiguous) {
			return "", classified(KindAmbiguousSkillLocation, err)
		}
		return "", classified(KindSkillNotFoundInArchive, err)
	}
	return dir, nil
}

// resolveDestination computes the install directory and enforces that it is
// a strict descendant of the agent-scope root, defending against traversal
// through a malformed skill id.
func (i *Installer) resolveDestination(agent agents.Agent, scope agents.Scope, opts Options, skillID string) (string, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	homeDir := opts.HomeDir
	if homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolving home directory")
		}
	}

	root, err := filepath.Abs(agent.SkillsRoot(scope, workDir, homeDir))
	if err != nil {
		return "", errors.Wrap(err, "resolving skills root")
	}

	dest, err := filepath.Abs(filepath.Join(root, skillID))
	if err != nil {
		return "", errors.Wrap(err, "resolving destination")
	}

	if !strings.HasPrefix(dest, root+string(os.PathSeparator)) {
		return "", classified(KindInvalidInput,
			errors.Errorf("skill id %q escapes the skills directory", skillID))
	}
	return dest, nil
}

func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// Remove deletes an installed skill directory. It shares the agent/scope
// directory-resolution contract with Install but is otherwise independent.
func (i *Installer) Remove(opts Options) (string, error) {
	if err := registry.ValidateSkillID(opts.SkillID); err != nil {
		return "", classified(KindInvalidInput, err)
	}

	agentName := opts.Agent
	if agentName == "" {
		agentName = agents.DefaultAgent
	}
	agent, err := agents.Lookup(agentName)
	if err != nil {
		return "", classified(KindInvalidInput, err)
	}

	scopeName := opts.Scope
	if scopeName == "" {
		scopeName = string(agents.ScopeProject)
	}
	scope, err := agents.ParseScope(scopeName)
	if err != nil {
		return "", classified(KindInvalidInput, err)
	}

	dest, err := i.resolveDestination(agent, scope, opts, opts.SkillID)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return "", errors.Errorf("skill %q is not installed", opts.SkillID)
	}

	if err := os.RemoveAll(dest); err != nil {
		return "", errors.Wrap(err, "removing skill directory")
	}
	return dest, nil
}
