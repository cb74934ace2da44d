package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"inkwell/app/models"

	"github.com/adrg/frontmatter"
)

type importFrontMatter struct {
	Title      string      `yaml:"title"`
	Slug       string      `yaml:"slug"`
	Date       string      `yaml:"date"`
	Category   string      `yaml:"category"`
	Categories interface{} `yaml:"categories"`
	Tags       interface{} `yaml:"tags"`
	Excerpt    string      `yaml:"excerpt"`
}

// ParseMarkdownFile turns a Markdown file into an unsaved post. Front matter
// is optional; without a title the file name minus its extension is used.
// Tags may be a list or a comma separated string.
func ParseMarkdownFile(name string, content []byte) (models.Post, error) {
	var fm importFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(content), &fm)
	if err != nil {
		return models.Post{}, fmt.Errorf("parsing front matter of %s: %w", name, err)
	}

	post := models.Post{
		Title:    strings.TrimSpace(fm.Title),
		Slug:     strings.TrimSpace(fm.Slug),
		Content:  strings.TrimLeft(string(body), "\r\n"),
		Excerpt:  strings.TrimSpace(fm.Excerpt),
		Category: strings.TrimSpace(fm.Category),
		Tags:     splitList(fm.Tags, ","),
		Date:     strings.TrimSpace(fm.Date),
	}
	if post.Category == "" {
		if cats := splitList(fm.Categories, ","); len(cats) > 0 {
			post.Category = cats[0]
		}
	}
	if post.Title == "" {
		base := filepath.Base(name)
		post.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return post, nil
}

func splitList(v interface{}, sep string) []string {
	out := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch t := v.(type) {
	case string:
		for _, part := range strings.Split(t, sep) {
			add(part)
		}
	case []interface{}:
		for _, item := range t {
			add(fmt.Sprint(item))
		}
	}
	return out
}
