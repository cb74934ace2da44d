package routes

import (
	"net/http"

	"inkwell/app/auth"
	"inkwell/app/controllers"
	"inkwell/app/middleware"
	"inkwell/app/render"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Controllers groups what SetupRoutes mounts.
type Controllers struct {
	Blog  *controllers.BlogController
	Auth  *controllers.AuthController
	Admin *controllers.AdminController
	Gate  *auth.Gate
	Jar   *auth.CookieJar
}

// Options configure the router.
type Options struct {
	// CORSOrigins are allowed to call /api. Empty disables CORS headers.
	CORSOrigins []string
	Logger      zerolog.Logger
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(c Controllers, opts Options) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.Recoverer(opts.Logger))
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = http.HandlerFunc(c.Blog.NotFound)

	// Serve static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(render.Static()))))

	// Public pages
	router.HandleFunc("/", c.Blog.Home).Methods("GET")
	router.HandleFunc("/page/{page:[0-9]+}", c.Blog.Home).Methods("GET")
	router.HandleFunc("/page/{page:[0-9]+}/", c.Blog.Home).Methods("GET")
	router.HandleFunc("/posts/{id}", c.Blog.Post).Methods("GET")
	router.HandleFunc("/posts/{id}/", c.Blog.Post).Methods("GET")
	router.HandleFunc("/categories", c.Blog.Categories).Methods("GET")
	router.HandleFunc("/categories/{name}", c.Blog.Category).Methods("GET")
	router.HandleFunc("/tags", c.Blog.Tags).Methods("GET")
	router.HandleFunc("/tags/{name}", c.Blog.Tag).Methods("GET")
	router.HandleFunc("/about", c.Blog.About).Methods("GET")
	router.HandleFunc("/friends", c.Blog.Friends).Methods("GET")
	router.HandleFunc("/search", c.Blog.Search).Methods("GET")
	router.HandleFunc("/search.json", c.Blog.SearchJSON).Methods("GET")
	router.HandleFunc("/healthz", c.Blog.Health).Methods("GET")

	// Login and first-time setup stay outside the session guard
	router.HandleFunc("/admin/login", c.Auth.LoginPage).Methods("GET")
	router.HandleFunc("/admin/login", c.Auth.Login).Methods("POST")
	router.HandleFunc("/admin/logout", c.Auth.Logout).Methods("POST")
	router.HandleFunc("/admin/setup", c.Auth.SetupPage).Methods("GET")
	router.HandleFunc("/admin/setup", c.Auth.Setup).Methods("POST")

	guard := middleware.RequireSession(c.Gate, c.Jar, c.Auth.Deny)

	// Admin web endpoints
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(guard)
	admin.HandleFunc("", c.Admin.Dashboard).Methods("GET")
	admin.HandleFunc("/", c.Admin.Dashboard).Methods("GET")
	admin.HandleFunc("/password", c.Auth.PasswordPage).Methods("GET")
	admin.HandleFunc("/password", c.Auth.ChangePassword).Methods("POST")
	admin.HandleFunc("/posts/new", c.Admin.NewPost).Methods("GET")
	admin.HandleFunc("/posts", c.Admin.SavePost).Methods("POST")
	admin.HandleFunc("/posts/{id}/edit", c.Admin.EditPost).Methods("GET")
	admin.HandleFunc("/posts/{id}/delete", c.Admin.DeletePost).Methods("GET", "POST")
	admin.HandleFunc("/posts/{id}/sync", c.Admin.SyncPost).Methods("POST")
	admin.HandleFunc("/preview", c.Admin.Preview).Methods("POST")
	admin.HandleFunc("/preview/ws", c.Admin.PreviewSocket).Methods("GET")
	admin.HandleFunc("/settings", c.Admin.Settings).Methods("GET")
	admin.HandleFunc("/settings", c.Admin.UpdateSettings).Methods("POST")
	admin.HandleFunc("/theme", c.Admin.UpdateTheme).Methods("POST")
	admin.HandleFunc("/friends", c.Admin.Friends).Methods("GET")
	admin.HandleFunc("/friends", c.Admin.AddFriend).Methods("POST")
	admin.HandleFunc("/friends/{id}/delete", c.Admin.RemoveFriend).Methods("GET", "POST")
	admin.HandleFunc("/data", c.Admin.Data).Methods("GET")
	admin.HandleFunc("/export", c.Admin.Export).Methods("GET")
	admin.HandleFunc("/import", c.Admin.Import).Methods("POST")
	admin.HandleFunc("/import/markdown", c.Admin.ImportMarkdown).Methods("POST")
	admin.HandleFunc("/sync/all", c.Admin.SyncAll).Methods("POST")
	admin.HandleFunc("/sync/settings", c.Admin.SyncSettings).Methods("POST")
	admin.HandleFunc("/sync/init", c.Admin.SyncInit).Methods("GET", "POST")
	admin.HandleFunc("/sync/pull", c.Admin.SyncPull).Methods("GET", "POST")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	if len(opts.CORSOrigins) > 0 {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		// Preflight requests need a matching route for the middleware to run.
		api.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	api.HandleFunc("/posts", c.Blog.ListPosts).Methods("GET")
	api.HandleFunc("/posts/{id}", c.Blog.GetPost).Methods("GET")
	api.HandleFunc("/search", c.Blog.SearchAPI).Methods("GET")
	api.HandleFunc("/settings", c.Blog.Settings).Methods("GET")
	api.HandleFunc("/friends/feeds", c.Blog.FriendFeeds).Methods("GET")

	api.HandleFunc("/auth/login", c.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/logout", c.Auth.Logout).Methods("POST")
	api.HandleFunc("/auth/setup", c.Auth.Setup).Methods("POST")

	// Admin API endpoints
	apiAdmin := api.PathPrefix("/admin").Subrouter()
	apiAdmin.Use(guard)
	apiAdmin.HandleFunc("/password", c.Auth.ChangePassword).Methods("PUT")
	apiAdmin.HandleFunc("/posts", c.Admin.APIListPosts).Methods("GET")
	apiAdmin.HandleFunc("/posts", c.Admin.APISavePost).Methods("POST")
	apiAdmin.HandleFunc("/posts/{id}", c.Admin.APISavePost).Methods("PUT")
	apiAdmin.HandleFunc("/posts/{id}", c.Admin.APIDeletePost).Methods("DELETE")
	apiAdmin.HandleFunc("/posts/{id}/sync", c.Admin.APISyncPost).Methods("POST")
	apiAdmin.HandleFunc("/preview", c.Admin.Preview).Methods("POST")
	apiAdmin.HandleFunc("/settings", c.Admin.APIUpdateSettings).Methods("PUT")
	apiAdmin.HandleFunc("/theme", c.Admin.APIUpdateTheme).Methods("PUT")
	apiAdmin.HandleFunc("/export", c.Admin.Export).Methods("GET")
	apiAdmin.HandleFunc("/import", c.Admin.APIImport).Methods("POST")
	apiAdmin.HandleFunc("/import/markdown", c.Admin.APIImportMarkdown).Methods("POST")
	apiAdmin.HandleFunc("/friends", c.Admin.APIAddFriend).Methods("POST")
	apiAdmin.HandleFunc("/friends/{id}", c.Admin.APIUpdateFriend).Methods("PUT")
	apiAdmin.HandleFunc("/friends/{id}", c.Admin.APIRemoveFriend).Methods("DELETE")
	apiAdmin.HandleFunc("/sync/{op}", c.Admin.APISync).Methods("POST")

	return router
}
