package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	TotalPosts int           `json:"totalPosts"`
	Posts      []models.Post `json:"posts"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field"`
	Details string `json:"details"`
}

func TestAPIRoutes(t *testing.T) {
	env := setupTestRouter(t, false)
	setupTestData(t, env, 7)

	t.Run("GET /api/posts returns list with pagination", func(t *testing.T) {
		w := serve(env, "GET", "/api/posts?page=2", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res apiResponse
		decode(t, w, &res)
		assert.Equal(t, 2, res.Page)
		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, 7, res.TotalPosts)
		require.Len(t, res.Posts, 2)
		assert.Equal(t, "2", res.Posts[0].ID)
		assert.Equal(t, "1", res.Posts[1].ID)
	})

	t.Run("GET /api/posts/{id} includes rendered html", func(t *testing.T) {
		w := serve(env, "GET", "/api/posts/3", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			models.Post
			HTML        string `json:"html"`
			ReadingTime int    `json:"readingTime"`
		}
		decode(t, w, &res)
		assert.Equal(t, "Test Post 3", res.Title)
		assert.Contains(t, res.HTML, "<strong>bold</strong>")
		assert.Equal(t, 1, res.ReadingTime)
	})

	t.Run("GET /api/posts/{id} unknown id", func(t *testing.T) {
		w := serve(env, "GET", "/api/posts/404", nil, nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var res errorResponse
		decode(t, w, &res)
		assert.Equal(t, "error", res.Status)
		assert.Equal(t, "post not found", res.Error)
	})

	t.Run("GET /api/search", func(t *testing.T) {
		w := serve(env, "GET", "/api/search?q=Test+Post+3&mode=linear", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Query   string `json:"query"`
			Results []struct {
				Post  models.Post `json:"post"`
				Score float64     `json:"score"`
			} `json:"results"`
		}
		decode(t, w, &res)
		assert.Equal(t, "Test Post 3", res.Query)
		require.NotEmpty(t, res.Results)
		assert.Equal(t, "3", res.Results[0].Post.ID)
	})

	t.Run("GET /api/settings", func(t *testing.T) {
		w := serve(env, "GET", "/api/settings", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Settings models.SiteSettings `json:"settings"`
			Theme    models.ThemeConfig  `json:"theme"`
		}
		decode(t, w, &res)
		assert.Equal(t, models.DefaultSettings().Title, res.Settings.Title)
		assert.Equal(t, models.DefaultTheme().PrimaryColor, res.Theme.PrimaryColor)
	})

	t.Run("GET /api/friends/feeds without aggregator", func(t *testing.T) {
		w := serve(env, "GET", "/api/friends/feeds", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /search.json lists every post", func(t *testing.T) {
		w := serve(env, "GET", "/search.json", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var docs []map[string]interface{}
		decode(t, w, &docs)
		assert.Len(t, docs, 7)
	})
}

func TestAPIAuth(t *testing.T) {
	env := setupTestRouter(t, false)

	t.Run("login before setup", func(t *testing.T) {
		w := serve(env, "POST", "/api/auth/login", strings.NewReader(`{"username":"admin","password":"secret123"}`), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("setup rejects a weak password", func(t *testing.T) {
		w := serve(env, "POST", "/api/auth/setup", strings.NewReader(`{"username":"admin","password":"short","confirm":"short"}`), nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var res errorResponse
		decode(t, w, &res)
		assert.Equal(t, "password", res.Field)
	})

	t.Run("setup", func(t *testing.T) {
		w := serve(env, "POST", "/api/auth/setup", strings.NewReader(`{"username":"admin","password":"secret123","confirm":"secret123"}`), nil)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = serve(env, "POST", "/api/auth/setup", strings.NewReader(`{"username":"other","password":"secret123","confirm":"secret123"}`), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bad JSON", func(t *testing.T) {
		w := serve(env, "POST", "/api/auth/login", strings.NewReader(`{`), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		w := serve(env, "POST", "/api/auth/login", strings.NewReader(`{"username":"admin","password":"secret123"}`), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Token    string `json:"token"`
			Username string `json:"username"`
		}
		decode(t, w, &res)
		assert.Equal(t, "admin", res.Username)
		require.NotEmpty(t, res.Token)

		req := httptest.NewRequest("GET", "/api/admin/posts", nil)
		req.Header.Set("Authorization", "Bearer "+res.Token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("lockout after five failures", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			w := serve(env, "POST", "/api/auth/login", strings.NewReader(`{"username":"admin","password":"wrong0000"}`), nil)
			require.Equal(t, http.StatusUnauthorized, w.Code)

			var res errorResponse
			decode(t, w, &res)
			assert.Equal(t, "invalid username or password", res.Error)
		}
		w := serve(env, "POST", "/api/auth/login", strings.NewReader(`{"username":"admin","password":"secret123"}`), nil)
		require.Equal(t, http.StatusTooManyRequests, w.Code)

		var res errorResponse
		decode(t, w, &res)
		assert.Contains(t, res.Details, "15")
	})
}

func TestAPILogout(t *testing.T) {
	env := setupTestRouter(t, false)
	cookie := login(t, env)

	w := serve(env, "GET", "/api/admin/posts", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(env, "POST", "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(env, "GET", "/api/admin/posts", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAPIPosts(t *testing.T) {
	env := setupTestRouter(t, false)
	setupTestData(t, env, 2)
	cookie := login(t, env)

	var created struct {
		Post models.Post `json:"post"`
		Sync struct {
			Attempted bool `json:"attempted"`
		} `json:"sync"`
	}

	t.Run("create", func(t *testing.T) {
		body := `{"title":"Hello World","content":"# Hi","category":"Go","tags":["go"],"date":"2024-05-01"}`
		w := serve(env, "POST", "/api/admin/posts", strings.NewReader(body), cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		decode(t, w, &created)
		assert.Equal(t, "hello-world", created.Post.Slug)
		assert.Equal(t, "1714555800000", created.Post.ID)
		assert.False(t, created.Sync.Attempted)

		data := env.content.Load(context.Background())
		require.Len(t, data.Posts, 3)
		assert.Equal(t, created.Post.ID, data.Posts[0].ID)
	})

	t.Run("create without title", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/posts", strings.NewReader(`{"content":"body"}`), cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var res errorResponse
		decode(t, w, &res)
		assert.Equal(t, "title", res.Field)
	})

	t.Run("update", func(t *testing.T) {
		body := `{"title":"Hello Again","content":"changed","date":"2024-05-01"}`
		w := serve(env, "PUT", "/api/admin/posts/"+created.Post.ID, strings.NewReader(body), cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		post, ok := env.content.Load(context.Background()).FindPost(created.Post.ID)
		require.True(t, ok)
		assert.Equal(t, "Hello Again", post.Title)
		assert.Equal(t, "changed", post.Content)
		assert.Len(t, env.content.Load(context.Background()).Posts, 3)
	})

	t.Run("update unknown post", func(t *testing.T) {
		w := serve(env, "PUT", "/api/admin/posts/missing", strings.NewReader(`{"title":"x","content":"y"}`), cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete needs confirmation", func(t *testing.T) {
		w := serve(env, "DELETE", "/api/admin/posts/1", nil, cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var res errorResponse
		decode(t, w, &res)
		assert.Equal(t, "confirmation required", res.Error)
		_, ok := env.content.Load(context.Background()).FindPost("1")
		assert.True(t, ok)

		w = serve(env, "DELETE", "/api/admin/posts/1?confirm=true", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)
		_, ok = env.content.Load(context.Background()).FindPost("1")
		assert.False(t, ok)
	})

	t.Run("sync without repository", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/posts/2/sync", nil, cookie)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("preview", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/preview", strings.NewReader(`{"content":"**hi**"}`), cookie)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			HTML string `json:"html"`
		}
		decode(t, w, &res)
		assert.Contains(t, res.HTML, "<strong>hi</strong>")
	})
}

func TestAdminAPISettingsAndData(t *testing.T) {
	env := setupTestRouter(t, false)
	setupTestData(t, env, 2)
	cookie := login(t, env)

	t.Run("settings", func(t *testing.T) {
		body := `{"title":"My Blog","description":"notes","author":"Alice","about":"hi"}`
		w := serve(env, "PUT", "/api/admin/settings", strings.NewReader(body), cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "My Blog", env.content.Load(context.Background()).Settings.Title)
	})

	t.Run("theme", func(t *testing.T) {
		body := `{"primaryColor":"#112233","accentColor":"#445566","fontFamily":"serif"}`
		w := serve(env, "PUT", "/api/admin/theme", strings.NewReader(body), cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "#112233", env.content.Load(context.Background()).Theme.PrimaryColor)
	})

	t.Run("export and import", func(t *testing.T) {
		w := serve(env, "GET", "/api/admin/export", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		exported := w.Body.String()

		_, err := env.content.Update(context.Background(), func(d models.BlogData) (models.BlogData, error) {
			d.Posts = d.Posts[:1]
			return d, nil
		})
		require.NoError(t, err)

		w = serve(env, "POST", "/api/admin/import", strings.NewReader(exported), cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, env.content.Load(context.Background()).Posts, 1)

		w = serve(env, "POST", "/api/admin/import?confirm=true", strings.NewReader(exported), cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res struct {
			Posts int `json:"posts"`
		}
		decode(t, w, &res)
		assert.Equal(t, 2, res.Posts)
		assert.Len(t, env.content.Load(context.Background()).Posts, 2)
	})

	t.Run("import markdown", func(t *testing.T) {
		body := "---\ntitle: From File\ntags: [a, b]\n---\n\nImported body"
		w := serve(env, "POST", "/api/admin/import/markdown?name=note.md&category=Notes", strings.NewReader(body), cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var post models.Post
		decode(t, w, &post)
		assert.Equal(t, "From File", post.Title)
		assert.Equal(t, "Notes", post.Category)
		assert.Equal(t, []string{"a", "b"}, post.Tags)
		assert.Equal(t, "Imported body", post.Content)
	})

	t.Run("import markdown without name", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/import/markdown", strings.NewReader("body"), cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminAPIFriends(t *testing.T) {
	env := setupTestRouter(t, false)
	cookie := login(t, env)

	w := serve(env, "POST", "/api/admin/friends", strings.NewReader(`{"name":"Bob","url":"https://bob.example"}`), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var link models.FriendLink
	decode(t, w, &link)
	require.NotEmpty(t, link.ID)

	w = serve(env, "PUT", "/api/admin/friends/"+link.ID, strings.NewReader(`{"name":"Bobby","url":"https://bob.example"}`), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	links := env.content.Load(context.Background()).FriendLinks
	require.NotEmpty(t, links)
	assert.Equal(t, "Bobby", links[len(links)-1].Name)

	w = serve(env, "PUT", "/api/admin/friends/missing", strings.NewReader(`{"name":"X","url":"https://x.example"}`), cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(env, "DELETE", "/api/admin/friends/"+link.ID, nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(env, "DELETE", "/api/admin/friends/"+link.ID+"?confirm=yes", nil, cookie)
	require.Equal(t, http.StatusNoContent, w.Code)
	for _, l := range env.content.Load(context.Background()).FriendLinks {
		assert.NotEqual(t, link.ID, l.ID)
	}
}

func TestAdminAPISync(t *testing.T) {
	env := setupTestRouter(t, true)
	setupTestData(t, env, 2)
	cookie := login(t, env)

	t.Run("save and push", func(t *testing.T) {
		body := `{"title":"Synced Post","content":"body","date":"2024-05-01"}`
		w := serve(env, "POST", "/api/admin/posts?sync=true", strings.NewReader(body), cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res struct {
			Sync struct {
				Attempted bool   `json:"attempted"`
				Error     string `json:"error"`
			} `json:"sync"`
		}
		decode(t, w, &res)
		assert.True(t, res.Sync.Attempted)
		assert.Empty(t, res.Sync.Error)
		assert.True(t, env.repo.has("_posts/2024-05-01-synced-post.md"))
	})

	t.Run("single post", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/posts/1/sync", nil, cookie)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		assert.True(t, env.repo.has("_posts/2024-04-01-test-post-1.md"))
	})

	t.Run("all", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/sync/all", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res struct {
			Results []struct {
				Name    string `json:"name"`
				Success bool   `json:"success"`
			} `json:"results"`
		}
		decode(t, w, &res)
		require.Len(t, res.Results, 3)
		for _, r := range res.Results {
			assert.True(t, r.Success, r.Name)
		}
		assert.True(t, env.repo.has("_posts/2024-04-02-test-post-2.md"))
	})

	t.Run("settings", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/sync/settings", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, env.repo.has("_config.yml"))
	})

	t.Run("init needs confirmation", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/sync/init", nil, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(env, "POST", "/api/admin/sync/init?confirm=true", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, env.repo.has("Gemfile"))
	})

	t.Run("pull merges by date and slug", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/sync/pull?confirm=true", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res struct {
			Added   int `json:"added"`
			Updated int `json:"updated"`
		}
		decode(t, w, &res)
		assert.Equal(t, 0, res.Added)
		assert.Equal(t, 3, res.Updated)
		assert.Len(t, env.content.Load(context.Background()).Posts, 3)
	})

	t.Run("unknown operation", func(t *testing.T) {
		w := serve(env, "POST", "/api/admin/sync/everything", nil, cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
