package reposync

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"inkwell/app/models"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// jekyllDate is the date form Jekyll reads from front matter.
const jekyllDate = "2006-01-02 15:04:05 -0700"

type postFrontMatter struct {
	Layout     string   `yaml:"layout"`
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
	Excerpt    string   `yaml:"excerpt"`
}

// PostPath is where a post lives in the repository:
// {dir}/{YYYY-MM-DD}-{slug}.md.
func PostPath(dir string, post models.Post) (string, error) {
	t, ok := post.PublishedAt()
	if !ok {
		return "", fmt.Errorf("post %q has no valid date", post.Title)
	}
	slug := post.Slug
	if slug == "" {
		slug = models.DeriveSlug(post.Title)
	}
	if slug == "" {
		slug = post.ID
	}
	return path.Join(dir, t.Format("2006-01-02")+"-"+slug+".md"), nil
}

// PostFile renders a post as a Jekyll source file: a YAML front matter block
// followed by the raw Markdown body.
func PostFile(post models.Post) (string, error) {
	fm := postFrontMatter{
		Layout:     "post",
		Title:      post.Title,
		Date:       post.Date,
		Categories: []string{},
		Tags:       post.Tags,
		Excerpt:    post.Excerpt,
	}
	if t, ok := post.PublishedAt(); ok {
		fm.Date = t.Format(jekyllDate)
	}
	if post.Category != "" {
		fm.Categories = []string{post.Category}
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(post.Content)
	return b.String(), nil
}

// pulledFrontMatter accepts the shapes Jekyll allows: categories and tags
// as a list or as a space separated string.
type pulledFrontMatter struct {
	Title      string      `yaml:"title"`
	Date       string      `yaml:"date"`
	Category   string      `yaml:"category"`
	Categories interface{} `yaml:"categories"`
	Tags       interface{} `yaml:"tags"`
	Excerpt    string      `yaml:"excerpt"`
}

// ParsePostFile reads a Jekyll post back into a Post. The slug and, when the
// front matter has none, the date come from the file name.
func ParsePostFile(filePath, content string) (models.Post, error) {
	var fm pulledFrontMatter
	body, err := frontmatter.Parse(strings.NewReader(content), &fm)
	if err != nil {
		return models.Post{}, fmt.Errorf("parsing front matter of %s: %w", filePath, err)
	}

	name := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	date, slug := splitPostName(name)

	post := models.Post{
		Title:   fm.Title,
		Slug:    slug,
		Content: strings.TrimLeft(string(body), "\n"),
		Excerpt: fm.Excerpt,
		Tags:    stringList(fm.Tags),
		Date:    fm.Date,
	}
	if post.Date == "" {
		post.Date = date
	}
	if post.Title == "" {
		post.Title = slug
	}
	if cats := stringList(fm.Categories); len(cats) > 0 {
		post.Category = cats[0]
	} else {
		post.Category = fm.Category
	}
	return post, nil
}

// splitPostName splits "2024-05-01-hello-world" into its date and slug.
func splitPostName(name string) (date, slug string) {
	if len(name) > 11 && name[4] == '-' && name[7] == '-' && name[10] == '-' {
		return name[:10], name[11:]
	}
	return "", name
}

func stringList(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		out = append(out, strings.Fields(t)...)
	case []interface{}:
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	}
	return out
}
