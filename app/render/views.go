package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"inkwell/app/models"
	"inkwell/app/search"
)

const (
	categoryPreview = 3
	maxTagSize      = 5
	snippetLength   = 150
)

// layoutData is what the layout template sees. View holds the page body.
type layoutData struct {
	Site        models.SiteSettings
	Title       string
	Description string
	Active      string
	ThemeCSS    template.CSS
	Admin       bool
	View        any
}

func (r *Renderer) layout(data models.BlogData) layoutData {
	return layoutData{
		Site:        data.Settings,
		Description: data.Settings.Description,
		ThemeCSS:    themeCSS(data.Theme),
	}
}

var fontStacks = map[string]string{
	"":       `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "PingFang SC", "Microsoft YaHei", sans-serif`,
	"system": `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "PingFang SC", "Microsoft YaHei", sans-serif`,
	"serif":  `Georgia, "Songti SC", "Times New Roman", serif`,
	"mono":   `"JetBrains Mono", Menlo, Consolas, monospace`,
}

// themeCSS turns the theme into CSS custom properties followed by the
// custom CSS, verbatim.
func themeCSS(t models.ThemeConfig) template.CSS {
	font, ok := fontStacks[t.FontFamily]
	if !ok {
		font = t.FontFamily
	}
	var b strings.Builder
	fmt.Fprintf(&b, ":root { --primary-color: %s; --accent-color: %s; --font-family: %s; }\n",
		t.PrimaryColor, t.AccentColor, font)
	b.WriteString(t.CustomCSS)
	return template.CSS(b.String())
}

type postView struct {
	Post      models.Post
	Body      template.HTML
	Prev      *models.Post
	Next      *models.Post
	URL       string
	ShareText string
	Twitter   string
	Facebook  string
}

// postView looks the post up by id. Prev is the following entry of the posts
// sequence and Next the preceding one, so navigation follows storage order.
func (r *Renderer) postView(data models.BlogData, id string) (postView, error) {
	i := data.IndexOf(id)
	if i < 0 {
		return postView{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	post := data.Posts[i]
	v := postView{
		Post: post,
		Body: r.Markdown(post.Content),
		URL:  r.PostURL(post.ID),
	}
	if i+1 < len(data.Posts) {
		prev := data.Posts[i+1]
		v.Prev = &prev
	}
	if i > 0 {
		next := data.Posts[i-1]
		v.Next = &next
	}
	v.ShareText = post.Title + " - " + data.Settings.Title
	v.Twitter = "https://twitter.com/intent/tweet?text=" + url.QueryEscape(v.ShareText) + "&url=" + url.QueryEscape(v.URL)
	v.Facebook = "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(v.URL)
	return v, nil
}

type listView struct {
	Kind        string
	Parent      string
	ParentLabel string
	Name        string
	Posts       []models.Post
}

type groupView struct {
	Name  string
	Count int
	Posts []models.Post
	More  bool
	Size  int
}

func categoriesView(data models.BlogData) []groupView {
	groups := data.Categories()
	out := make([]groupView, len(groups))
	for i, g := range groups {
		preview := g.Posts
		if len(preview) > categoryPreview {
			preview = preview[:categoryPreview]
		}
		out[i] = groupView{Name: g.Name, Count: len(g.Posts), Posts: preview, More: len(g.Posts) > categoryPreview}
	}
	return out
}

func tagsView(data models.BlogData) []groupView {
	groups := data.Tags()
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = groupView{Name: g.Name, Count: len(g.Posts), Posts: g.Posts, Size: TagSize(len(g.Posts))}
	}
	return out
}

// TagSize is the tag cloud size class for a tag used count times, 1 to 5.
func TagSize(count int) int {
	return min(max(count, 1), maxTagSize)
}

type aboutView struct {
	Body       template.HTML
	Posts      int
	Categories int
	Tags       int
}

func (r *Renderer) aboutView(data models.BlogData) aboutView {
	about := data.Settings.About
	if about == "" {
		about = models.DefaultAbout
	}
	return aboutView{
		Body:       r.Markdown(about),
		Posts:      len(data.Posts),
		Categories: len(data.Categories()),
		Tags:       len(data.Tags()),
	}
}

type searchHit struct {
	Post    models.Post
	Title   template.HTML
	Snippet template.HTML
	Score   float64
}

type searchPage struct {
	Query string
	Hits  []searchHit
}

func searchView(params Params) searchPage {
	page := searchPage{Query: params.Query}
	for _, res := range params.Results {
		page.Hits = append(page.Hits, searchHit{
			Post:    res.Post,
			Title:   search.Highlight(res.Post.Title, params.Query),
			Snippet: search.Highlight(search.Snippet(res.Post.Summary(), snippetLength), params.Query),
			Score:   res.Score,
		})
	}
	return page
}

type friendGroup struct {
	Name  string
	Links []models.FriendLink
}

// uncategorised is the heading for friend links without a category.
const uncategorised = "其他"

func friendsView(links []models.FriendLink) []friendGroup {
	var groups []friendGroup
	index := make(map[string]int)
	var rest []models.FriendLink
	for _, l := range links {
		if l.Category == "" {
			rest = append(rest, l)
			continue
		}
		i, ok := index[l.Category]
		if !ok {
			i = len(groups)
			index[l.Category] = i
			groups = append(groups, friendGroup{Name: l.Category})
		}
		groups[i].Links = append(groups[i].Links, l)
	}
	if len(rest) > 0 {
		groups = append(groups, friendGroup{Name: uncategorised, Links: rest})
	}
	return groups
}
