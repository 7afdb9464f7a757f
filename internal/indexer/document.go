package indexer

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// frontMatterEnd returns the line index of the closing "---".
// Front matter is only recognized when the first line is "---"; unclosed front matter is ignored.
func frontMatterEnd(lines []string) (int, bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return -1, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i, true
		}
	}
	return -1, false
}

// splitFrontMatter separates YAML front matter from the Markdown body.
func splitFrontMatter(content string) (meta, body string) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	end, ok := frontMatterEnd(lines)
	if !ok {
		return "", content
	}
	return strings.Join(lines[1:end], "\n"), strings.Join(lines[end+1:], "\n")
}

// markdownText renders Markdown and reduces the HTML to plain text.
type markdownText struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var contentMarkdown = newMarkdownText()

func newMarkdownText() *markdownText {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return &markdownText{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: p,
	}
}

// Text returns the plain text of a Markdown document.
func (m *markdownText) Text(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	// StrictPolicy escapes text content; the index stores plain text.
	return Preprocess(html.UnescapeString(m.policy.Sanitize(buf.String()))), nil
}

// parseContentFile reads a content file: YAML front matter followed by a Markdown body.
// A missing title falls back to the file name.
func (m *markdownText) parseContentFile(path string, data []byte) (*models.ContentItemInput, error) {
	meta, body := splitFrontMatter(string(data))
	input := &models.ContentItemInput{}
	if strings.TrimSpace(meta) != "" {
		if err := yaml.Unmarshal([]byte(meta), input); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
	}
	text, err := m.Text(body)
	if err != nil {
		return nil, err
	}
	input.Body = text
	if strings.TrimSpace(input.Title) == "" {
		input.Title = titleFromPath(path)
	}
	return input, nil
}

// titleFromPath turns "remote_work-tips.md" into "remote work-tips".
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", " "))
}
