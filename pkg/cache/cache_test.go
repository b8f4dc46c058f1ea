package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xskills/xskills/pkg/registry"
)

type countingFetcher struct {
	calls int
	files map[string]string
	err   error
}

func (f *countingFetcher) FetchSubtree(_ context.Context, _ registry.Source, dir string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for name, body := range f.files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func demoMetadata() *registry.SkillMetadata {
	return &registry.SkillMetadata{
		ID:          "demo",
		Title:       "Demo",
		Description: "A demo",
		Category:    "productivity",
		Source:      registry.Source{Repo: "https://github.com/o/r", Path: "skills/demo", Ref: "main"},
	}
}

func TestSyncMissFetches(t *testing.T) {
	fetcher := &countingFetcher{files: map[string]string{
		"SKILL.md":        "# Demo",
		"assets/logo.txt": "logo",
	}}
	sync := NewSynchronizer(filepath.Join(t.TempDir(), "skills"), fetcher)

	fetched, err := sync.Sync(context.Background(), demoMetadata())
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, 1, fetcher.calls)

	data, err := os.ReadFile(filepath.Join(sync.EntryDir("demo"), "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Demo", string(data))

	meta, err := readMeta(filepath.Join(sync.EntryDir("demo"), MetaFileName))
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/o/r", meta.Repo)
	assert.Equal(t, "main", meta.Ref)
	assert.Equal(t, "skills/demo", meta.Path)
	assert.NotEmpty(t, meta.SyncedAt)
}

func TestSyncHitAvoidsNetwork(t *testing.T) {
	fetcher := &countingFetcher{files: map[string]string{"SKILL.md": "# Demo"}}
	sync := NewSynchronizer(filepath.Join(t.TempDir(), "skills"), fetcher)

	_, err := sync.Sync(context.Background(), demoMetadata())
	require.NoError(t, err)

	fetched, err := sync.Sync(context.Background(), demoMetadata())
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Equal(t, 1, fetcher.calls, "an exact key match must not fetch")
}

func TestSyncKeyMismatchRefetches(t *testing.T) {
	fetcher := &countingFetcher{files: map[string]string{"SKILL.md": "# Demo"}}
	sync := NewSynchronizer(filepath.Join(t.TempDir(), "skills"), fetcher)

	_, err := sync.Sync(context.Background(), demoMetadata())
	require.NoError(t, err)

	changed := demoMetadata()
	changed.Source.Ref = "v2.0.0"
	fetcher.files["SKILL.md"] = "# Demo v2"

	fetched, err := sync.Sync(context.Background(), changed)
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, 2, fetcher.calls)

	data, err := os.ReadFile(filepath.Join(sync.EntryDir("demo"), "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Demo v2", string(data))

	meta, err := readMeta(filepath.Join(sync.EntryDir("demo"), MetaFileName))
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", meta.Ref)
}

func TestSyncFetchFailureKeepsExistingEntry(t *testing.T) {
	fetcher := &countingFetcher{files: map[string]string{"SKILL.md": "# Demo"}}
	root := filepath.Join(t.TempDir(), "skills")
	sync := NewSynchronizer(root, fetcher)

	_, err := sync.Sync(context.Background(), demoMetadata())
	require.NoError(t, err)

	changed := demoMetadata()
	changed.Source.Ref = "v2.0.0"
	fetcher.err = errors.New("network down")

	_, err = sync.Sync(context.Background(), changed)
	require.Error(t, err)

	// The old entry stays fully populated; no partial state.
	data, err := os.ReadFile(filepath.Join(sync.EntryDir("demo"), "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Demo", string(data))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging directories must not be left behind")
}

func TestFiles(t *testing.T) {
	fetcher := &countingFetcher{files: map[string]string{
		"SKILL.md":        "# Demo",
		"assets/logo.txt": "logo",
		"b.txt":           "b",
	}}
	sync := NewSynchronizer(filepath.Join(t.TempDir(), "skills"), fetcher)

	_, err := sync.Sync(context.Background(), demoMetadata())
	require.NoError(t, err)

	files, err := sync.Files("demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"SKILL.md", "assets/logo.txt", "b.txt"}, files)
}

func TestFilesMissingEntry(t *testing.T) {
	sync := NewSynchronizer(filepath.Join(t.TempDir(), "skills"), &countingFetcher{})
	_, err := sync.Files("absent")
	require.Error(t, err)
}
