package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, root, id, content string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "beta", "---\nname: beta\ndescription: Second skill\n---\n\n# Beta\n")
	writeSkill(t, root, "alpha", "---\nname: alpha\ndescription: First skill\n---\n\n# Alpha\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

	d, err := NewDiscovery(WithRoots(root))
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "alpha", found[0].ID)
	assert.Equal(t, "First skill", found[0].Description)
	assert.Equal(t, "beta", found[1].ID)
	assert.Equal(t, filepath.Join(root, "beta"), found[1].Directory)
}

func TestDiscoverBrokenSkillStaysVisible(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hollow"), 0o755))

	d, err := NewDiscovery(WithRoots(root))
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "hollow", found[0].ID)
	assert.Empty(t, found[0].Description)
}

func TestDiscoverPrecedence(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeSkill(t, first, "demo", "---\nname: demo\ndescription: From first root\n---\n")
	writeSkill(t, second, "demo", "---\nname: demo\ndescription: From second root\n---\n")
	writeSkill(t, second, "extra", "---\nname: extra\ndescription: Only here\n---\n")

	d, err := NewDiscovery(WithRoots(first, second))
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "From first root", found[0].Description)
	assert.Equal(t, "extra", found[1].ID)
}

func TestDiscoverMissingRoot(t *testing.T) {
	d, err := NewDiscovery(WithRoots(filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestWithAgentScope(t *testing.T) {
	workDir := t.TempDir()
	writeSkill(t, filepath.Join(workDir, ".claude", "skills"), "demo",
		"---\nname: demo\ndescription: Project skill\n---\n")

	d, err := NewDiscovery(WithAgentScope("claude", "project", workDir, t.TempDir()))
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Project skill", found[0].Description)
}

func TestWithAgentScopeRejectsUnknownAgent(t *testing.T) {
	_, err := NewDiscovery(WithAgentScope("hal9000", "project", t.TempDir(), t.TempDir()))
	require.Error(t, err)
}

func TestNewDiscoveryRequiresRoots(t *testing.T) {
	_, err := NewDiscovery()
	require.Error(t, err)
}
