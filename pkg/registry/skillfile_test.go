package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillFile(t *testing.T) {
	content := `---
name: demo
description: A demo skill
---

# Demo

Use this skill for demonstrations.
`

	file, err := ParseSkillFile([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "demo", file.Name)
	assert.Equal(t, "A demo skill", file.Description)
	assert.Contains(t, file.Content, "# Demo")
	assert.NotContains(t, file.Content, "name: demo")
}

func TestParseSkillFileNoFrontmatter(t *testing.T) {
	file, err := ParseSkillFile([]byte("# Just a body\n"))
	require.NoError(t, err)

	assert.Empty(t, file.Name)
	assert.Empty(t, file.Description)
	assert.Contains(t, file.Content, "# Just a body")
}
