package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/cache"
	"github.com/xskills/xskills/pkg/registry"
)

// generatedAtSentinel replaces the volatile timestamp on both sides of the
// comparison.
const generatedAtSentinel = "<generated>"

// RemediationMessage is the fixed instruction reported on any mismatch.
const RemediationMessage = "registry is out of date: run 'xskills registry build' and commit the results"

// Check recomputes the registry documents in memory and deep-compares them,
// with generatedAt normalized, against the committed documents. It is a pure
// function of repository state: neither the cache nor the committed files
// are mutated. Any structural difference is an error carrying the fixed
// remediation message, making this usable as a CI gate.
func (b *Builder) Check(ctx context.Context) error {
	records, err := registry.ScanMetadataDir(b.cfg.path(b.cfg.MetadataDir))
	if err != nil {
		return errors.Wrap(err, "scanning metadata records")
	}

	for _, rec := range records {
		if rec.CreatedAt == "" || rec.UpdatedAt == "" {
			return errors.Errorf("skill %s is missing backfilled timestamps; %s", rec.ID, RemediationMessage)
		}
		if err := b.checkCacheEntry(rec); err != nil {
			return err
		}
	}

	docs, err := b.assemble(records, generatedAtSentinel)
	if err != nil {
		return errors.Wrapf(err, "recomputing registry; %s", RemediationMessage)
	}

	committed, err := b.loadCommitted(b.cfg.path(b.cfg.OutputDir))
	if err != nil {
		return err
	}

	if diff := compareDocuments(docs, committed); diff != "" {
		return errors.Errorf("%s differs from the committed registry; %s", diff, RemediationMessage)
	}

	return b.checkSiteCopy()
}

// checkCacheEntry verifies the cache sidecar matches the record's source
// without fetching anything; Check is read-only by contract.
func (b *Builder) checkCacheEntry(rec *registry.SkillMetadata) error {
	dir := filepath.Join(b.cfg.path(b.cfg.CacheDir), rec.ID)
	data, err := os.ReadFile(filepath.Join(dir, cache.MetaFileName))
	if err != nil {
		return errors.Errorf("cache entry for skill %s is missing; %s", rec.ID, RemediationMessage)
	}

	var meta cache.Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return errors.Wrapf(err, "parsing cache sidecar for skill %s", rec.ID)
	}

	if meta.Repo != rec.Source.Repo || meta.Ref != rec.Source.Ref || meta.Path != rec.Source.Path {
		return errors.Errorf("cache entry for skill %s is stale; %s", rec.ID, RemediationMessage)
	}
	return nil
}

func (b *Builder) loadCommitted(dir string) (*Documents, error) {
	var docs Documents

	targets := []struct {
		name string
		doc  any
	}{
		{indexFileName, &docs.Index},
		{categoriesFileName, &docs.Categories},
		{searchFileName, &docs.Search},
	}

	for _, t := range targets {
		data, err := os.ReadFile(filepath.Join(dir, t.name))
		if err != nil {
			return nil, errors.Errorf("committed %s is missing; %s", t.name, RemediationMessage)
		}
		if err := json.Unmarshal(data, t.doc); err != nil {
			return nil, errors.Wrapf(err, "parsing committed %s", t.name)
		}
	}

	docs.Index.GeneratedAt = generatedAtSentinel
	docs.Categories.GeneratedAt = generatedAtSentinel
	docs.Search.GeneratedAt = generatedAtSentinel
	return &docs, nil
}

func compareDocuments(computed, committed *Documents) string {
	if !reflect.DeepEqual(computed.Index, committed.Index) {
		return indexFileName
	}
	if !reflect.DeepEqual(computed.Categories, committed.Categories) {
		return categoriesFileName
	}
	if !reflect.DeepEqual(computed.Search, committed.Search) {
		return searchFileName
	}
	return ""
}

// checkSiteCopy verifies the site copies are byte-identical to the canonical
// documents.
func (b *Builder) checkSiteCopy() error {
	for _, name := range []string{indexFileName, categoriesFileName, searchFileName} {
		canonical, err := os.ReadFile(filepath.Join(b.cfg.path(b.cfg.OutputDir), name))
		if err != nil {
			return errors.Errorf("committed %s is missing; %s", name, RemediationMessage)
		}
		site, err := os.ReadFile(filepath.Join(b.cfg.path(b.cfg.SiteDir), name))
		if err != nil {
			return errors.Errorf("site copy of %s is missing; %s", name, RemediationMessage)
		}
		if !bytes.Equal(canonical, site) {
			return errors.Errorf("site copy of %s differs from the canonical document; %s", name, RemediationMessage)
		}
	}
	return nil
}
