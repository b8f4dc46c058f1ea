// Package builder generates the registry documents (index, categories,
// search index) from per-skill metadata records and the materialized source
// cache, and verifies that the committed documents match what the current
// repository state would produce.
package builder

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/archive"
	"github.com/xskills/xskills/pkg/cache"
	"github.com/xskills/xskills/pkg/logger"
	"github.com/xskills/xskills/pkg/registry"
)

const (
	indexFileName      = "index.json"
	categoriesFileName = "categories.json"
	searchFileName     = "search-index.json"
)

// Config locates the registry tree inside the repository.
type Config struct {
	// RepoRoot is the repository root; the remaining paths are relative to it
	// when not absolute.
	RepoRoot string
	// MetadataDir holds the per-skill metadata records. Default registry/skills.
	MetadataDir string
	// CacheDir holds materialized skill sources. Default .cache/skills.
	CacheDir string
	// OutputDir is the canonical output location. Default registry.
	OutputDir string
	// SiteDir is the copy consumed by the front end. Default site/public/registry.
	SiteDir string

	// Fetcher overrides how sources are materialized (tests use a counting fake).
	Fetcher cache.Fetcher
	// Now overrides the clock (tests).
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.RepoRoot == "" {
		c.RepoRoot = "."
	}
	if c.MetadataDir == "" {
		c.MetadataDir = filepath.Join("registry", "skills")
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(".cache", "skills")
	}
	if c.OutputDir == "" {
		c.OutputDir = "registry"
	}
	if c.SiteDir == "" {
		c.SiteDir = filepath.Join("site", "public", "registry")
	}
	if c.Fetcher == nil {
		c.Fetcher = &cache.ArchiveFetcher{Locator: archive.Locator{}}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.RepoRoot, p)
}

// Documents bundles the three generated registry documents.
type Documents struct {
	Index      registry.Index
	Categories registry.Categories
	Search     registry.SearchIndex
}

// Builder generates and verifies the registry documents.
type Builder struct {
	cfg  Config
	sync *cache.Synchronizer
}

// New creates a Builder.
func New(cfg Config) *Builder {
	cfg = cfg.withDefaults()
	return &Builder{
		cfg:  cfg,
		sync: cache.NewSynchronizer(cfg.path(cfg.CacheDir), cfg.Fetcher),
	}
}

// Build runs the full registry build: timestamp backfill, cache
// synchronization for every record, document assembly, and writing the
// outputs to both the canonical and site locations. Any scan failure aborts
// the whole build; there is no partial registry.
func (b *Builder) Build(ctx context.Context) (*Documents, error) {
	records, err := registry.ScanMetadataDir(b.cfg.path(b.cfg.MetadataDir))
	if err != nil {
		return nil, errors.Wrap(err, "scanning metadata records")
	}

	if err := b.backfillTimestamps(ctx, records); err != nil {
		return nil, err
	}

	fetched := 0
	for _, rec := range records {
		did, err := b.sync.Sync(ctx, rec)
		if err != nil {
			return nil, errors.Wrapf(err, "synchronizing cache for skill %s", rec.ID)
		}
		if did {
			fetched++
		}
	}
	logger.G(ctx).WithField("skills", len(records)).WithField("fetched", fetched).Info("cache synchronized")

	docs, err := b.assemble(records, b.cfg.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{b.cfg.path(b.cfg.OutputDir), b.cfg.path(b.cfg.SiteDir)} {
		if err := writeDocuments(dir, docs); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// backfillTimestamps sets missing createdAt/updatedAt fields to now and
// persists them. Idempotent: a field already set is never touched again, so
// repeated builds reproduce the same registry modulo generatedAt.
func (b *Builder) backfillTimestamps(ctx context.Context, records []*registry.SkillMetadata) error {
	now := b.cfg.Now().UTC().Format(time.RFC3339)

	for _, rec := range records {
		changed := false
		if rec.CreatedAt == "" {
			rec.CreatedAt = now
			changed = true
		}
		if rec.UpdatedAt == "" {
			rec.UpdatedAt = now
			changed = true
		}
		if !changed {
			continue
		}

		path := filepath.Join(b.cfg.path(b.cfg.MetadataDir), rec.ID+".yaml")
		if err := registry.SaveMetadata(path, rec); err != nil {
			return errors.Wrapf(err, "backfilling timestamps for skill %s", rec.ID)
		}
		logger.G(ctx).WithField("skill", rec.ID).Debug("backfilled timestamps")
	}
	return nil
}

// assemble builds the three documents from the records and cache contents.
// For fixed inputs the output is deterministic: records arrive sorted by id
// and every derived listing is sorted here.
func (b *Builder) assemble(records []*registry.SkillMetadata, generatedAt string) (*Documents, error) {
	skills := make([]registry.IndexSkill, 0, len(records))
	docsList := make([]registry.SearchDoc, 0, len(records))
	categorySet := make(map[string]struct{})

	for _, rec := range records {
		files, err := b.sync.Files(rec.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "listing cached files for skill %s", rec.ID)
		}

		tags := append([]string(nil), rec.Tags...)
		sort.Strings(tags)
		rec.Tags = tags

		skills = append(skills, registry.IndexSkill{SkillMetadata: *rec, Files: files})
		categorySet[rec.Category] = struct{}{}

		doc := registry.SearchDoc{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Category:    rec.Category,
			Tags:        tags,
		}
		if data, err := b.sync.ReadSkillFile(rec.ID, archive.SkillFileName); err == nil {
			if parsed, err := registry.ParseSkillFile(data); err == nil {
				doc.Content = parsed.Content
				if doc.Title == "" {
					doc.Title = parsed.Name
				}
				if doc.Description == "" {
					doc.Description = parsed.Description
				}
			}
		}
		docsList = append(docsList, doc)
	}

	categories := make([]string, 0, len(categorySet))
	for c := range categorySet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return &Documents{
		Index: registry.Index{
			SpecVersion: registry.SpecVersion,
			GeneratedAt: generatedAt,
			Skills:      skills,
		},
		Categories: registry.Categories{
			SpecVersion: registry.SpecVersion,
			GeneratedAt: generatedAt,
			Categories:  categories,
		},
		Search: registry.SearchIndex{
			SpecVersion: registry.SpecVersion,
			GeneratedAt: generatedAt,
			Docs:        docsList,
		},
	}, nil
}

func writeDocuments(dir string, docs *Documents) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", dir)
	}

	outputs := []struct {
		name string
		doc  any
	}{
		{indexFileName, docs.Index},
		{categoriesFileName, docs.Categories},
		{searchFileName, docs.Search},
	}

	for _, out := range outputs {
		if err := writeJSON(filepath.Join(dir, out.name), out.doc); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes a document via write-temp-then-rename so concurrent
// readers never see a truncated file.
func writeJSON(path string, doc any) error {
	data, err := encodeJSON(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp output file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

func encodeJSON(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding registry document")
	}
	return append(data, '\n'), nil
}
