package registry

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadMetadata reads and validates one skill metadata record.
func LoadMetadata(path string) (*SkillMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading metadata record")
	}

	var meta SkillMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "parsing metadata record %s", filepath.Base(path))
	}

	if err := meta.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid metadata record %s", filepath.Base(path))
	}
	return &meta, nil
}

// SaveMetadata writes a record back to disk via write-temp-then-rename, so a
// concurrent reader never observes a half-written record.
func SaveMetadata(path string, meta *SkillMetadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "encoding metadata record")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp metadata file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "writing metadata record")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "replacing metadata record")
	}
	return nil
}

// ScanMetadataDir loads every record under dir, sorted by id. Malformed
// records and duplicate ids are collected into a single aggregate error;
// any failure aborts the caller's whole build.
func ScanMetadataDir(dir string) ([]*SkillMetadata, error) {
	paths, err := doublestar.FilepathGlob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "globbing metadata records")
	}
	sort.Strings(paths)

	var scanErr *multierror.Error
	seen := make(map[string]string)
	var records []*SkillMetadata

	for _, path := range paths {
		meta, err := LoadMetadata(path)
		if err != nil {
			scanErr = multierror.Append(scanErr, err)
			continue
		}

		if want := meta.ID + ".yaml"; filepath.Base(path) != want {
			scanErr = multierror.Append(scanErr,
				errors.Errorf("metadata record %s: file must be named %s", filepath.Base(path), want))
			continue
		}

		if prev, dup := seen[meta.ID]; dup {
			scanErr = multierror.Append(scanErr,
				errors.Errorf("duplicate skill id %q in %s and %s", meta.ID, prev, filepath.Base(path)))
			continue
		}
		seen[meta.ID] = filepath.Base(path)
		records = append(records, meta)
	}

	if err := scanErr.ErrorOrNil(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
