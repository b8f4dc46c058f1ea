package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const demoRecord = `id: demo
title: Demo Skill
description: A demonstration skill
category: productivity
tags:
  - demo
  - example
source:
  repo: https://github.com/o/r
  path: skills/demo
  ref: main
`

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "demo.yaml", demoRecord)

	meta, err := LoadMetadata(filepath.Join(dir, "demo.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "demo", meta.ID)
	assert.Equal(t, "Demo Skill", meta.Title)
	assert.Equal(t, "productivity", meta.Category)
	assert.Equal(t, []string{"demo", "example"}, meta.Tags)
	assert.Equal(t, "https://github.com/o/r", meta.Source.Repo)
	assert.Equal(t, "skills/demo", meta.Source.Path)
	assert.Equal(t, "main", meta.Source.Ref)
}

func TestLoadMetadataMalformed(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "bad.yaml", "id: [not valid")

	_, err := LoadMetadata(filepath.Join(dir, "bad.yaml"))
	require.Error(t, err)
}

func TestLoadMetadataMissingFields(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "demo.yaml", "id: demo\ntitle: Demo\n")

	_, err := LoadMetadata(filepath.Join(dir, "demo.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestSaveMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")

	meta := &SkillMetadata{
		ID:          "demo",
		Title:       "Demo Skill",
		Description: "A demonstration skill",
		Category:    "productivity",
		Source:      Source{Repo: "https://github.com/o/r", Path: "skills/demo", Ref: "main"},
		CreatedAt:   "2024-01-01T00:00:00Z",
		UpdatedAt:   "2024-01-01T00:00:00Z",
	}
	require.NoError(t, SaveMetadata(path, meta))

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, meta, loaded)
}

func TestScanMetadataDir(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "demo.yaml", demoRecord)
	writeRecord(t, dir, "alpha.yaml", `id: alpha
title: Alpha
description: First skill
category: coding
source:
  repo: https://github.com/o/r
  path: skills/alpha
  ref: main
`)

	records, err := ScanMetadataDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alpha", records[0].ID)
	assert.Equal(t, "demo", records[1].ID)
}

func TestScanMetadataDirDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "demo.yaml", demoRecord)
	// Same id under a second file name: the scan must reject the build.
	writeRecord(t, dir, "demo2.yaml", demoRecord)

	_, err := ScanMetadataDir(dir)
	require.Error(t, err)
}

func TestScanMetadataDirFileNameMustMatchID(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "other-name.yaml", demoRecord)

	_, err := ScanMetadataDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo.yaml")
}

func TestScanMetadataDirAggregatesErrors(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "bad1.yaml", "id: [broken")
	writeRecord(t, dir, "bad2.yaml", "id: also broken\n")

	_, err := ScanMetadataDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad1.yaml")
	assert.Contains(t, err.Error(), "bad2.yaml")
}

func TestValidateSkillID(t *testing.T) {
	valid := []string{"demo", "commit-helper", "a1", "skill-2-go"}
	for _, id := range valid {
		assert.NoError(t, ValidateSkillID(id), id)
	}

	invalid := []string{"", "Demo", "-demo", "demo-", "dem--o", "demo skill", "demo/../x", "демо"}
	for _, id := range invalid {
		assert.Error(t, ValidateSkillID(id), id)
	}
}

func TestSourceOwnerRepo(t *testing.T) {
	src := Source{Repo: "https://github.com/octo/skills"}
	owner, repo, err := src.OwnerRepo()
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "skills", repo)

	src = Source{Repo: "https://github.com/octo/skills.git"}
	_, repo, err = src.OwnerRepo()
	require.NoError(t, err)
	assert.Equal(t, "skills", repo)

	src = Source{Repo: "https://github.com/justowner"}
	_, _, err = src.OwnerRepo()
	require.Error(t, err)
}
