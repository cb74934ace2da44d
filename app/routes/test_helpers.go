package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"inkwell/app/auth"
	"inkwell/app/controllers"
	"inkwell/app/markdown"
	"inkwell/app/models"
	"inkwell/app/render"
	"inkwell/app/repositories"
	"inkwell/app/reposync"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "admin"
	testPassword = "secret123"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// memoryRepo is an in-memory GitHub repository.
type memoryRepo struct {
	mu    sync.Mutex
	files map[string]string
}

func (m *memoryRepo) GetFile(_ context.Context, path string) (*reposync.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, reposync.ErrFileNotFound
	}
	return &reposync.File{Path: path, Content: content, SHA: "sha-" + path}, nil
}

func (m *memoryRepo) PutFile(_ context.Context, path, content, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	return nil
}

func (m *memoryRepo) DeleteFile(_ context.Context, path, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memoryRepo) ListDir(_ context.Context, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if strings.HasPrefix(p, dir+"/") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memoryRepo) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

type testEnv struct {
	router  *mux.Router
	store   *repositories.BadgerStore
	content *repositories.ContentStore
	gate    *auth.Gate
	repo    *memoryRepo
}

// setupTestRouter builds the full router over an in-memory Badger store.
// withSync connects the admin to an in-memory repository.
func setupTestRouter(t *testing.T, withSync bool) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	now := func() time.Time { return testNow }

	store, err := repositories.NewBadgerStore("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	md := markdown.Legacy{}
	renderer, err := render.New(md, render.Options{PostsPerPage: 5, BaseURL: "http://blog.test"})
	require.NoError(t, err)
	tokens, err := auth.NewTokens("test-secret", now)
	require.NoError(t, err)

	env := &testEnv{
		store:   store,
		content: repositories.NewContentStore(store, logger, now),
		gate:    auth.NewGate(store, auth.DefaultOptions(), logger, now),
		repo:    &memoryRepo{files: map[string]string{}},
	}
	jar := auth.NewCookieJar(tokens, "", false)

	var publisher services.Publisher
	if withSync {
		publisher = reposync.NewSyncer(env.repo, reposync.Options{Owner: "alice"}, logger)
	}
	admin := services.NewAdminService(env.content, publisher, nil, logger, now)

	env.router = SetupRoutes(Controllers{
		Blog:  controllers.NewBlogController(env.content, renderer, md, nil, controllers.BlogOptions{}, logger),
		Auth:  controllers.NewAuthController(env.gate, jar, renderer, env.content, logger),
		Admin: controllers.NewAdminController(admin, renderer, logger),
		Gate:  env.gate,
		Jar:   jar,
	}, Options{CORSOrigins: []string{"http://localhost:3000"}, Logger: logger})
	return env
}

// setupTestData stores n posts, newest first, with ids "1".."n".
func setupTestData(t *testing.T, env *testEnv, n int) {
	t.Helper()
	data := models.DefaultBlogData(testNow)
	data.Posts = nil
	for i := n; i >= 1; i-- {
		id := strconv.Itoa(i)
		data.Posts = append(data.Posts, models.Post{
			ID:       id,
			Title:    "Test Post " + id,
			Slug:     "test-post-" + id,
			Content:  "This is test post number " + id + " with **bold** text",
			Category: "Testing",
			Tags:     []string{"go", "test"},
			Date:     fmt.Sprintf("2024-04-%02dT10:00", i),
		})
	}
	require.NoError(t, env.content.Save(context.Background(), data))
}

// login creates the admin account and returns a session cookie.
func login(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()
	ctx := context.Background()
	if ok, _ := env.gate.IsConfigured(ctx); !ok {
		require.NoError(t, env.gate.Setup(ctx, testUser, testPassword, testPassword))
	}

	body := `{"username":"` + testUser + `","password":"` + testPassword + `"}`
	w := serve(env, "POST", "/api/auth/login", strings.NewReader(body), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "inkwell_session" {
			return c
		}
	}
	t.Fatal("login set no session cookie")
	return nil
}

// serve sends a request through the router. Bodies under /api are JSON and
// other bodies are form encoded.
func serve(env *testEnv, method, path string, body io.Reader, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		if strings.HasPrefix(path, "/api/") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
