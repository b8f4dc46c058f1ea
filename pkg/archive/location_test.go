package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	loc, err := Locator{}.Locate("o", "r", "main", "skills/demo")
	require.NoError(t, err)

	assert.Equal(t, "https://codeload.github.com/o/r/tar.gz/main", loc.TarballURL)
	assert.Equal(t, "r-main", loc.RootDir)
	assert.Equal(t, "r-main/skills/demo", loc.MemberPath)
	assert.Equal(t, 3, loc.StripComponents)
}

func TestLocateStripComponents(t *testing.T) {
	tests := []struct {
		path  string
		strip int
	}{
		{"a/b/c", 4},
		{".", 1},
		{"skills/demo", 3},
		{"./skills/demo/", 3},
		{"top", 2},
	}

	for _, tc := range tests {
		loc, err := Locator{}.Locate("o", "r", "main", tc.path)
		require.NoError(t, err)
		assert.Equal(t, tc.strip, loc.StripComponents, "path %q", tc.path)
	}
}

func TestLocateRootPath(t *testing.T) {
	loc, err := Locator{}.Locate("o", "r", "main", ".")
	require.NoError(t, err)
	assert.Equal(t, "r-main", loc.MemberPath)
	assert.Equal(t, 1, loc.StripComponents)
}

func TestLocateEmptyPath(t *testing.T) {
	_, err := Locator{}.Locate("o", "r", "main", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = Locator{}.Locate("o", "r", "main", "   ")
	require.Error(t, err)
}

func TestLocateCustomBaseURL(t *testing.T) {
	loc, err := Locator{BaseURL: "http://127.0.0.1:9999/"}.Locate("o", "r", "v1", "skills/x")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/o/r/tar.gz/v1", loc.TarballURL)
}

func TestSanitizeRef(t *testing.T) {
	assert.Equal(t, "main", SanitizeRef("main"))
	assert.Equal(t, "feature-skills-v2", SanitizeRef("feature/skills/v2"))
	assert.Equal(t, "v1.2.3", SanitizeRef("v1.2.3"))
	assert.Equal(t, "release-2024-01", SanitizeRef("release/2024@01"))
}

func TestSanitizedRefInRootDir(t *testing.T) {
	loc, err := Locator{}.Locate("o", "r", "feature/x", "skills/demo")
	require.NoError(t, err)
	assert.Equal(t, "r-feature-x", loc.RootDir)
	// The URL keeps the raw ref; only the root directory name is sanitized.
	assert.Equal(t, "https://codeload.github.com/o/r/tar.gz/feature/x", loc.TarballURL)
}

func TestSplitSegments(t *testing.T) {
	assert.Equal(t, 0, SplitSegments(".").Depth())
	assert.Equal(t, 0, SplitSegments("").Depth())
	assert.Equal(t, 0, SplitSegments("/").Depth())
	assert.Equal(t, 3, SplitSegments("a/b/c").Depth())
	assert.Equal(t, 2, SplitSegments("./a/b/").Depth())
	assert.Equal(t, "a/b", SplitSegments("./a/b/").Join())
}
