// Package search answers free-text queries over the blog's posts.
//
// Two ranking modes exist. Fuzzy weighs approximate matches across title,
// excerpt, content, tags and category. Linear adds up per-term hit counts and
// is the mode the static search page falls back to.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"inkwell/app/markdown"
	"inkwell/app/models"

	"golang.org/x/text/cases"
)

// Ranking modes.
const (
	ModeFuzzy  = "fuzzy"
	ModeLinear = "linear"
)

const (
	// DefaultLimit caps results when the caller passes no limit.
	DefaultLimit = 10
	// MinQueryLength is the shortest query, in characters, that is searched.
	MinQueryLength = 2
)

// Document is the denormalised, searchable view of one post. It is also the
// element type of /search.json.
type Document struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Date       string   `json:"date"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

// Result is one ranked hit. Score is higher for better matches in both modes.
type Result struct {
	Post  models.Post
	Score float64
}

// Index holds the documents built from a snapshot of the posts.
type Index struct {
	posts []models.Post
	docs  []Document
}

// Build indexes posts in order. md renders content before it is reduced to
// plain text; nil uses the legacy renderer.
func Build(posts []models.Post, md markdown.Renderer) *Index {
	if md == nil {
		md = markdown.Legacy{}
	}
	idx := &Index{
		posts: append([]models.Post(nil), posts...),
		docs:  make([]Document, len(posts)),
	}
	for i, p := range posts {
		categories := []string{}
		if p.Category != "" {
			categories = []string{p.Category}
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		idx.docs[i] = Document{
			ID:         p.ID,
			Title:      p.Title,
			URL:        "/posts/" + p.ID,
			Date:       p.Date,
			Excerpt:    p.Summary(),
			Content:    markdown.PlainText(md.Render(p.Content)),
			Tags:       tags,
			Categories: categories,
		}
	}
	return idx
}

// Documents returns the indexed documents in post order.
func (idx *Index) Documents() []Document {
	return append([]Document(nil), idx.docs...)
}

// Len is the number of indexed posts.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Search ranks the posts matching query. Queries shorter than two characters
// return nothing. An unknown mode falls back to linear.
func (idx *Index) Search(query string, limit int, mode string) []Result {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var hits []hit
	if mode == ModeFuzzy {
		hits = idx.fuzzy(query)
	} else {
		hits = idx.linear(query)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	hits = pinExactTitles(hits, idx.docs, query)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Post: idx.posts[h.doc], Score: h.score}
	}
	return results
}

type hit struct {
	doc   int
	score float64
}

// pinExactTitles moves hits whose title equals the whole query to the front,
// keeping relative order within both partitions.
func pinExactTitles(hits []hit, docs []Document, query string) []hit {
	q := fold(query)
	out := make([]hit, 0, len(hits))
	var rest []hit
	for _, h := range hits {
		if fold(strings.TrimSpace(docs[h.doc].Title)) == q {
			out = append(out, h)
		} else {
			rest = append(rest, h)
		}
	}
	return append(out, rest...)
}

func fold(s string) string {
	return cases.Fold().String(s)
}
