package registry

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// SkillFile is a parsed SKILL.md document: YAML frontmatter plus the
// instruction body. Used to enrich search documents from cached sources.
type SkillFile struct {
	Name        string
	Description string
	Content     string
}

// ParseSkillFile parses SKILL.md content. Frontmatter is optional here;
// missing fields stay empty and the caller falls back to registry metadata.
func ParseSkillFile(data []byte) (*SkillFile, error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(data, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "parsing SKILL.md")
	}

	file := &SkillFile{Content: extractBody(string(data))}
	if metaData := meta.Get(pctx); metaData != nil {
		file.Name, _ = metaData["name"].(string)
		file.Description, _ = metaData["description"].(string)
	}
	return file, nil
}

// extractBody strips the YAML frontmatter block and returns the body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}
	return content
}
