package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"inkwell/app/errs"
	"inkwell/app/friends"
	"inkwell/app/markdown"
	"inkwell/app/middleware"
	"inkwell/app/models"
	"inkwell/app/render"
	"inkwell/app/repositories"
	"inkwell/app/search"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// BlogOptions tune the public pages.
type BlogOptions struct {
	SearchMode  string
	SearchLimit int
}

// BlogController serves the public site and its read-only JSON API.
type BlogController struct {
	content  *repositories.ContentStore
	renderer *render.Renderer
	md       markdown.Renderer
	feeds    *friends.Aggregator
	opts     BlogOptions
	respond  Responder
	started  time.Time
}

// NewBlogController returns a controller. feeds may be nil, which disables
// /api/friends/feeds.
func NewBlogController(content *repositories.ContentStore, renderer *render.Renderer, md markdown.Renderer, feeds *friends.Aggregator, opts BlogOptions, logger zerolog.Logger) *BlogController {
	if opts.SearchMode == "" {
		opts.SearchMode = search.ModeFuzzy
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = search.DefaultLimit
	}
	return &BlogController{
		content:  content,
		renderer: renderer,
		md:       md,
		feeds:    feeds,
		opts:     opts,
		respond:  NewResponder(logger.With().Str("handlerName", "blog").Logger()),
		started:  time.Now(),
	}
}

func (c *BlogController) page(w http.ResponseWriter, r *http.Request, status int, view render.ViewKind, data models.BlogData, params render.Params) {
	html, err := c.renderer.Render(view, data, params)
	if errors.Is(err, render.ErrPostNotFound) {
		c.NotFound(w, r)
		return
	}
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteHTML(w, status, html)
}

// NotFound renders the 404 page, or a JSON error under /api.
func (c *BlogController) NotFound(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAPI(r) {
		c.respond.WriteError(w, r, errs.NewNotFoundError(r.URL.Path))
		return
	}
	html, err := c.renderer.Render(render.ViewNotFound, c.content.Load(r.Context()), render.Params{})
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c.respond.WriteHTML(w, http.StatusNotFound, html)
}

// pageNumber reads the {page} route variable. It is absent on the root.
func pageNumber(r *http.Request) (int, bool) {
	v, ok := mux.Vars(r)["page"]
	if !ok {
		return 1, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Home lists posts, newest first, one page at a time.
func (c *BlogController) Home(w http.ResponseWriter, r *http.Request) {
	n, ok := pageNumber(r)
	if !ok {
		c.NotFound(w, r)
		return
	}
	c.page(w, r, http.StatusOK, render.ViewHome, c.content.Load(r.Context()), render.Params{Page: n})
}

// Post shows a single post.
func (c *BlogController) Post(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewPost, c.content.Load(r.Context()), render.Params{ID: mux.Vars(r)["id"]})
}

func (c *BlogController) Categories(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewCategories, c.content.Load(r.Context()), render.Params{})
}

func (c *BlogController) Category(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewCategory, c.content.Load(r.Context()), render.Params{Name: mux.Vars(r)["name"]})
}

func (c *BlogController) Tags(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewTags, c.content.Load(r.Context()), render.Params{})
}

func (c *BlogController) Tag(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewTag, c.content.Load(r.Context()), render.Params{Name: mux.Vars(r)["name"]})
}

func (c *BlogController) About(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewAbout, c.content.Load(r.Context()), render.Params{})
}

func (c *BlogController) Friends(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, render.ViewFriends, c.content.Load(r.Context()), render.Params{})
}

// limitParam reads ?limit=, capped at the configured search limit.
func (c *BlogController) limitParam(r *http.Request) int {
	limit := c.opts.SearchLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v < limit {
		limit = v
	}
	return limit
}

func (c *BlogController) modeParam(r *http.Request) string {
	switch mode := r.URL.Query().Get("mode"); mode {
	case search.ModeFuzzy, search.ModeLinear:
		return mode
	default:
		return c.opts.SearchMode
	}
}

// Search renders the results page for ?q=.
func (c *BlogController) Search(w http.ResponseWriter, r *http.Request) {
	data := c.content.Load(r.Context())
	query := r.URL.Query().Get("q")
	results := search.Build(data.Posts, c.md).Search(query, c.limitParam(r), c.modeParam(r))
	c.page(w, r, http.StatusOK, render.ViewSearch, data, render.Params{Query: query, Results: results})
}

// SearchJSON serves every post as a search document, the same file the
// static build writes to /search.json.
func (c *BlogController) SearchJSON(w http.ResponseWriter, r *http.Request) {
	data := c.content.Load(r.Context())
	c.respond.WriteJSON(w, http.StatusOK, search.Build(data.Posts, c.md).Documents())
}

// Health reports liveness.
func (c *BlogController) Health(w http.ResponseWriter, r *http.Request) {
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(c.started).Round(time.Second).String(),
	})
}

// ListPosts handles GET /api/posts?page=.
func (c *BlogController) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	p := render.Paginate(c.content.Load(r.Context()).Posts, page, c.renderer.PostsPerPage())
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts":      p.Posts,
		"page":       p.Current,
		"totalPages": p.TotalPages,
		"totalPosts": p.TotalPosts,
	})
}

// GetPost handles GET /api/posts/{id}. The rendered body is included.
func (c *BlogController) GetPost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	post, ok := c.content.Load(r.Context()).FindPost(id)
	if !ok {
		c.respond.WriteError(w, r, render.ErrPostNotFound)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, struct {
		models.Post
		HTML        string `json:"html"`
		ReadingTime int    `json:"readingTime"`
	}{post, string(c.renderer.Markdown(post.Content)), models.ReadingTime(post.Content)})
}

type searchResult struct {
	Post  models.Post `json:"post"`
	Score float64     `json:"score"`
}

// SearchAPI handles GET /api/search?q=&limit=&mode=.
func (c *BlogController) SearchAPI(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := search.Build(c.content.Load(r.Context()).Posts, c.md).Search(query, c.limitParam(r), c.modeParam(r))
	out := make([]searchResult, len(results))
	for i, res := range results {
		out[i] = searchResult{Post: res.Post, Score: res.Score}
	}
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": out,
	})
}

// Settings handles GET /api/settings.
func (c *BlogController) Settings(w http.ResponseWriter, r *http.Request) {
	data := c.content.Load(r.Context())
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"settings": data.Settings,
		"theme":    data.Theme,
	})
}

// FriendFeeds handles GET /api/friends/feeds with the latest items of every
// friend's feed. A friend whose feed fails is reported with its error.
func (c *BlogController) FriendFeeds(w http.ResponseWriter, r *http.Request) {
	if c.feeds == nil {
		c.respond.WriteError(w, r, repositories.ErrNotFound)
		return
	}
	type feed struct {
		Name    string         `json:"name"`
		URL     string         `json:"url"`
		FeedURL string         `json:"feedUrl,omitempty"`
		Items   []friends.Item `json:"items"`
		Error   string         `json:"error,omitempty"`
	}
	results := c.feeds.Latest(r.Context(), c.content.Load(r.Context()).FriendLinks)
	out := make([]feed, len(results))
	for i, res := range results {
		items := res.Items
		if items == nil {
			items = []friends.Item{}
		}
		out[i] = feed{Name: res.Link.Name, URL: res.Link.URL, FeedURL: res.FeedURL, Items: items, Error: res.Error()}
	}
	c.respond.WriteJSON(w, http.StatusOK, out)
}
