package quotes

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

type frontMatter struct {
	ID      string `yaml:"id"`
	Quote   string `yaml:"quote"`
	Speaker string `yaml:"speaker"`
	Name    string `yaml:"name"`
}

// ParseMarkdown reads a quote kept as a markdown file with YAML front matter.
// The quote front matter field wins over the body; speaker falls back to name.
// The returned id is the front matter id or a slug of fallbackID. A file
// without quote text yields a Record with empty Text.
func ParseMarkdown(raw, fallbackID string) (Record, string, error) {
	fm, body, err := parseFrontMatter(raw)
	if err != nil {
		return Record{}, "", err
	}

	quote := fm.Quote
	if strings.TrimSpace(quote) == "" {
		quote = plainText([]byte(body))
	}
	speaker := fm.Speaker
	if strings.TrimSpace(speaker) == "" {
		speaker = fm.Name
	}

	id := fm.ID
	if id == "" {
		id = slug.Make(fallbackID)
	}

	return NewRecord(quote, speaker), id, nil
}

func parseFrontMatter(raw string) (*frontMatter, string, error) {
	normalized := strings.TrimSpace(normalizeNewlines(raw))
	if !strings.HasPrefix(normalized, "---\n") {
		return nil, "", errors.New("missing YAML front matter")
	}

	rest := normalized[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return nil, "", errors.New("unterminated YAML front matter")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return nil, "", err
	}
	return &fm, strings.TrimSpace(rest[idx+len("\n---"):]), nil
}

// plainText drops markdown syntax, keeping one line per source line and a
// blank line between blocks.
func plainText(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if !entering {
				return ast.WalkContinue, nil
			}
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.CodeSpan:
			if entering {
				for c := node.FirstChild(); c != nil; c = c.NextSibling() {
					if t, ok := c.(*ast.Text); ok {
						b.Write(t.Segment.Value(src))
					}
				}
				return ast.WalkSkipChildren, nil
			}
		default:
			if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument && n.NextSibling() != nil {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
