// Package cache materializes skill source files into a local cache keyed by
// the (repo, ref, path) triple. An entry is either fully populated with a
// matching sidecar or absent; there is no partially written state. Writers
// racing across processes are last-writer-wins, which the atomic staging
// swap keeps safe for readers.
package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/archive"
	"github.com/xskills/xskills/pkg/logger"
	"github.com/xskills/xskills/pkg/registry"
)

// MetaFileName is the sidecar file recording what an entry was built from.
const MetaFileName = ".cache-meta.json"

// Meta is the cache entry sidecar. A cache hit requires byte equality of
// Repo, Ref, and Path with the skill's current source.
type Meta struct {
	Repo     string `json:"repo"`
	Ref      string `json:"ref"`
	Path     string `json:"path"`
	SyncedAt string `json:"syncedAt"`
}

// Fetcher materializes a skill source subtree into a directory.
type Fetcher interface {
	FetchSubtree(ctx context.Context, src registry.Source, dir string) error
}

// ArchiveFetcher fetches sources through the streaming tarball pipeline.
// Unlike installation, cache materialization keeps the internal metadata
// marker file.
type ArchiveFetcher struct {
	Locator archive.Locator
}

// FetchSubtree implements Fetcher.
func (f *ArchiveFetcher) FetchSubtree(ctx context.Context, src registry.Source, dir string) error {
	owner, repo, err := src.OwnerRepo()
	if err != nil {
		return err
	}

	loc, err := f.Locator.Locate(owner, repo, src.Ref, src.Path)
	if err != nil {
		return err
	}

	return archive.ExtractSubtree(ctx, loc.TarballURL, loc.MemberPath, loc.StripComponents, dir, archive.ExtractOptions{})
}

// Synchronizer keeps per-skill cache entries in sync with their sources.
type Synchronizer struct {
	root    string
	fetcher Fetcher
	now     func() time.Time
}

// NewSynchronizer creates a Synchronizer rooted at root (.cache/skills in
// the repository layout).
func NewSynchronizer(root string, fetcher Fetcher) *Synchronizer {
	return &Synchronizer{root: root, fetcher: fetcher, now: time.Now}
}

// EntryDir returns the cache directory for a skill id.
func (s *Synchronizer) EntryDir(id string) string {
	return filepath.Join(s.root, id)
}

// Sync ensures the cache entry for the skill matches its current source.
// It reports whether a fetch was performed: an entry whose sidecar key
// matches exactly is a hit and costs no network call. On a miss the source
// is fetched into a staging directory and swapped into place, so readers
// never observe a partial entry.
func (s *Synchronizer) Sync(ctx context.Context, meta *registry.SkillMetadata) (bool, error) {
	dir := s.EntryDir(meta.ID)
	log := logger.G(ctx).WithField("skill", meta.ID)

	if existing, err := readMeta(filepath.Join(dir, MetaFileName)); err == nil {
		if existing.Repo == meta.Source.Repo && existing.Ref == meta.Source.Ref && existing.Path == meta.Source.Path {
			log.Debug("cache hit")
			return false, nil
		}
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return false, errors.Wrap(err, "creating cache root")
	}

	staging, err := os.MkdirTemp(s.root, "."+meta.ID+".staging-*")
	if err != nil {
		return false, errors.Wrap(err, "creating cache staging directory")
	}
	defer os.RemoveAll(staging)

	if err := s.fetcher.FetchSubtree(ctx, meta.Source, staging); err != nil {
		return false, errors.Wrapf(err, "fetching source for skill %s", meta.ID)
	}

	sidecar := Meta{
		Repo:     meta.Source.Repo,
		Ref:      meta.Source.Ref,
		Path:     meta.Source.Path,
		SyncedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := writeMeta(filepath.Join(staging, MetaFileName), sidecar); err != nil {
		return false, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return false, errors.Wrap(err, "removing stale cache entry")
	}
	if err := os.Rename(staging, dir); err != nil {
		return false, errors.Wrap(err, "activating cache entry")
	}

	log.WithField("ref", meta.Source.Ref).Info("cache entry synchronized")
	return true, nil
}

// Files returns the sorted relative file listing of a cache entry,
// excluding the sidecar.
func (s *Synchronizer) Files(id string) ([]string, error) {
	dir := s.EntryDir(id)
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "cache entry for skill %s", id)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "listing cache entry for skill %s", id)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if filepath.Base(m) == MetaFileName {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// ReadSkillFile reads a file from a cache entry, typically SKILL.md.
func (s *Synchronizer) ReadSkillFile(id, name string) ([]byte, error) {
	data, err := fs.ReadFile(os.DirFS(s.EntryDir(id)), name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s for skill %s", name, id)
	}
	return data, nil
}

func readMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "parsing cache sidecar")
	}
	return &m, nil
}

func writeMeta(path string, m Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding cache sidecar")
	}
	return errors.Wrap(os.WriteFile(path, append(data, '\n'), 0o644), "writing cache sidecar")
}
