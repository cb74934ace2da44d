// Package render turns BlogData into HTML pages.
//
// Rendering is pure: the same view, data and params always produce the same
// page, and data is never modified. Templates escape by default; only the
// Markdown body and the theme's custom CSS are inserted raw.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strings"

	"inkwell/app/markdown"
	"inkwell/app/models"
	"inkwell/app/search"
)

//go:embed templates
var templateFS embed.FS

// ErrPostNotFound is returned when a post view names an unknown id.
var ErrPostNotFound = errors.New("post not found")

// ViewKind names a public page.
type ViewKind string

const (
	ViewHome       ViewKind = "home"
	ViewPost       ViewKind = "post"
	ViewCategory   ViewKind = "category"
	ViewTag        ViewKind = "tag"
	ViewCategories ViewKind = "categories"
	ViewTags       ViewKind = "tags"
	ViewAbout      ViewKind = "about"
	ViewSearch     ViewKind = "search"
	ViewFriends    ViewKind = "friends"
	ViewNotFound   ViewKind = "notfound"
)

// Params carries the per-view arguments. Page is used by home, ID by post,
// Name by category and tag, Query and Results by search.
type Params struct {
	Page    int
	ID      string
	Name    string
	Query   string
	Results []search.Result
}

// Options configure a Renderer.
type Options struct {
	PostsPerPage int
	BaseURL      string
}

// Renderer renders public and admin pages.
type Renderer struct {
	md           markdown.Renderer
	postsPerPage int
	baseURL      string
	templates    map[string]*template.Template
}

// New parses the embedded templates.
func New(md markdown.Renderer, opts Options) (*Renderer, error) {
	if md == nil {
		md = markdown.Legacy{}
	}
	if opts.PostsPerPage <= 0 {
		opts.PostsPerPage = models.DefaultPostsPerPage
	}
	r := &Renderer{
		md:           md,
		postsPerPage: opts.PostsPerPage,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
	}
	templates, err := loadTemplates(templateFS)
	if err != nil {
		return nil, err
	}
	r.templates = templates
	return r, nil
}

// loadTemplates parses every page template together with the layout and
// partials, keyed by its path relative to templates/ without extension.
func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	adminPages, err := fs.Glob(fsys, "templates/admin/*.html")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, page := range append(pages, adminPages...) {
		name := strings.TrimSuffix(strings.TrimPrefix(page, "templates/"), ".html")
		if name == "layout" || name == "partials" {
			continue
		}
		t, err := template.Must(base.Clone()).ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", page, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// PostsPerPage is the home page size.
func (r *Renderer) PostsPerPage() int {
	return r.postsPerPage
}

// Markdown renders src with the configured engine.
func (r *Renderer) Markdown(src string) template.HTML {
	return template.HTML(r.md.Render(src))
}

// Render renders a public view.
func (r *Renderer) Render(view ViewKind, data models.BlogData, params Params) (string, error) {
	page := r.layout(data)

	switch view {
	case ViewHome:
		p := Paginate(data.Posts, params.Page, r.postsPerPage)
		page.Active = "home"
		page.View = p
	case ViewPost:
		v, err := r.postView(data, params.ID)
		if err != nil {
			return "", err
		}
		page.Title = v.Post.Title
		page.Description = v.Post.Summary()
		page.View = v
	case ViewCategory:
		page.Title = "分类: " + params.Name
		page.Active = "categories"
		page.View = listView{Kind: "分类", Parent: "/categories", ParentLabel: "分类", Name: params.Name, Posts: data.PostsInCategory(params.Name)}
	case ViewTag:
		page.Title = "标签: " + params.Name
		page.Active = "tags"
		page.View = listView{Kind: "标签", Parent: "/tags", ParentLabel: "标签", Name: params.Name, Posts: data.PostsWithTag(params.Name)}
	case ViewCategories:
		page.Title = "文章分类"
		page.Active = "categories"
		page.View = categoriesView(data)
	case ViewTags:
		page.Title = "标签云"
		page.Active = "tags"
		page.View = tagsView(data)
	case ViewAbout:
		page.Title = "关于"
		page.Active = "about"
		page.View = r.aboutView(data)
	case ViewSearch:
		page.Title = "搜索"
		page.View = searchView(params)
	case ViewFriends:
		page.Title = "友情链接"
		page.Active = "friends"
		page.View = friendsView(data.FriendLinks)
	case ViewNotFound:
		page.Title = "页面不存在"
	default:
		return "", fmt.Errorf("unknown view %q", view)
	}

	return r.execute(string(view), page)
}

// Admin renders an admin page. view is any value the named template expects.
func (r *Renderer) Admin(name string, data models.BlogData, view any) (string, error) {
	page := r.layout(data)
	page.Admin = true
	page.Active = name
	page.View = view
	return r.execute("admin/"+name, page)
}

func (r *Renderer) execute(name string, page layoutData) (string, error) {
	t, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("no template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// PostURL is the absolute URL of a post.
func (r *Renderer) PostURL(id string) string {
	return r.baseURL + "/posts/" + url.PathEscape(id)
}

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and other assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
