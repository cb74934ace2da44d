package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"inkwell/app/errs"
	"inkwell/app/models"
	"inkwell/app/render"
	"inkwell/app/reposync"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// maxUpload caps import bodies.
const maxUpload = 10 << 20

// gates answers confirmation prompts from the request: confirm accepts the
// destructive gates and sync accepts pushing to GitHub afterwards.
type gates struct{ confirm, sync bool }

func (g gates) Confirm(context.Context, string) (bool, error)     { return g.confirm, nil }
func (g gates) ConfirmSync(context.Context, string) (bool, error) { return g.sync, nil }

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "on", "1":
		return true
	}
	return false
}

func gatesFrom(r *http.Request) gates {
	return gates{confirm: truthy(r.FormValue("confirm")), sync: truthy(r.FormValue("sync"))}
}

var flashes = map[string]string{
	"saved":          "文章已保存",
	"saved-synced":   "文章已保存并同步到 GitHub",
	"deleted":        "文章已删除",
	"synced":         "已同步到 GitHub",
	"settings":       "设置已保存",
	"theme":          "主题已保存",
	"friend-added":   "友链已添加",
	"friend-removed": "友链已删除",
	"imported":       "数据已导入",
}

// AdminController serves the admin pages. Every route sits behind the
// session guard.
type AdminController struct {
	admin    *services.AdminService
	renderer *render.Renderer
	respond  Responder
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewAdminController(admin *services.AdminService, renderer *render.Renderer, logger zerolog.Logger) *AdminController {
	logger = logger.With().Str("handlerName", "admin").Logger()
	return &AdminController{
		admin:    admin,
		renderer: renderer,
		respond:  NewResponder(logger),
		logger:   logger,
	}
}

func (c *AdminController) page(w http.ResponseWriter, r *http.Request, status int, name string, view any) {
	html, err := c.renderer.Admin(name, c.admin.Data(r.Context()), view)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteHTML(w, status, html)
}

func (c *AdminController) confirmPage(w http.ResponseWriter, r *http.Request, view render.ConfirmView) {
	c.page(w, r, http.StatusOK, "confirm", view)
}

func flash(r *http.Request) string {
	return flashes[r.URL.Query().Get("flash")]
}

func redirectFlash(w http.ResponseWriter, r *http.Request, path, key string) {
	http.Redirect(w, r, path+"?flash="+url.QueryEscape(key), http.StatusSeeOther)
}

func postPath(id, action string) string {
	return "/admin/posts/" + url.PathEscape(id) + "/" + action
}

// Dashboard lists every post.
func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	c.dashboard(w, r, flash(r), "")
}

func (c *AdminController) dashboard(w http.ResponseWriter, r *http.Request, flash, errText string) {
	c.page(w, r, http.StatusOK, "dashboard", render.DashboardView{
		Posts:          c.admin.Data(r.Context()).Posts,
		SyncConfigured: c.admin.SyncConfigured(),
		Flash:          flash,
		Error:          errText,
	})
}

func (c *AdminController) editorView(e *services.Editor, form services.PostForm, tagInput string, err error) render.EditorView {
	view := render.EditorView{
		Post: models.Post{
			ID:       e.Target(),
			Title:    form.Title,
			Slug:     form.Slug,
			Content:  form.Content,
			Excerpt:  form.Excerpt,
			Category: form.Category,
			Date:     form.Date,
		},
		Tags:           e.Tags.Tags(),
		TagInput:       tagInput,
		IsNew:          e.IsNew(),
		SyncConfigured: c.admin.SyncConfigured(),
	}
	if err != nil {
		view.Error = errorText(err)
		view.Field = toApiErr(err).Field
	}
	return view
}

// NewPost shows an empty editor.
func (c *AdminController) NewPost(w http.ResponseWriter, r *http.Request) {
	e := services.NewEditor()
	e.Begin(nil)
	c.page(w, r, http.StatusOK, "editor", c.editorView(e, e.Form(), "", nil))
}

// EditPost shows the editor filled with an existing post.
func (c *AdminController) EditPost(w http.ResponseWriter, r *http.Request) {
	post, err := c.admin.Post(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	e := services.NewEditor()
	e.Begin(&post)
	c.page(w, r, http.StatusOK, "editor", c.editorView(e, e.Form(), "", nil))
}

func postForm(r *http.Request) services.PostForm {
	return services.PostForm{
		Title:    r.PostFormValue("title"),
		Slug:     r.PostFormValue("slug"),
		Content:  r.PostFormValue("content"),
		Excerpt:  r.PostFormValue("excerpt"),
		Category: r.PostFormValue("category"),
		Date:     r.PostFormValue("date"),
	}
}

// SavePost handles every submit of the editor form. Enter in the tag field
// submits action=add_tag, a chip's × submits remove_tag, and only
// action=save writes the post.
func (c *AdminController) SavePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	ctx := r.Context()

	e := services.NewEditor()
	if id := r.PostFormValue("id"); id != "" {
		post, err := c.admin.Post(ctx, id)
		if err != nil {
			c.respond.WriteError(w, r, err)
			return
		}
		e.Begin(&post)
	} else {
		e.Begin(nil)
	}
	e.Tags.Reset(r.PostForm["tags"])
	form := postForm(r)
	tagInput := r.PostFormValue("tag_input")

	if tag := r.PostFormValue("remove_tag"); tag != "" {
		e.Tags.Remove(tag)
		c.page(w, r, http.StatusOK, "editor", c.editorView(e, form, tagInput, nil))
		return
	}

	switch r.PostFormValue("action") {
	case "add_tag":
		if e.Tags.Commit(services.CommitKey, tagInput) {
			tagInput = ""
		}
		c.page(w, r, http.StatusOK, "editor", c.editorView(e, form, tagInput, nil))
		return
	case "", "save":
	default:
		c.respond.WriteError(w, r, errs.NewBadRequestError("unknown action"))
		return
	}

	var outcome services.SyncOutcome
	svc := c.admin.WithConfirmer(gates{sync: truthy(r.PostFormValue("sync"))})
	_, err := e.Submit(form, func(p models.Post) (models.Post, error) {
		saved, o, err := svc.SavePost(ctx, p)
		outcome = o
		return saved, err
	})
	if err != nil {
		c.page(w, r, toApiErr(err).StatusCode, "editor", c.editorView(e, form, tagInput, err))
		return
	}
	switch {
	case outcome.Err != nil:
		c.dashboard(w, r, flashes["saved"], "同步到 GitHub 失败: "+outcome.Err.Error())
	case outcome.Attempted:
		redirectFlash(w, r, "/admin", "saved-synced")
	default:
		redirectFlash(w, r, "/admin", "saved")
	}
}

// DeletePost asks for confirmation, then deletes. The confirmation page
// offers deleting the GitHub copy as well.
func (c *AdminController) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	post, err := c.admin.Post(r.Context(), id)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	if r.Method != http.MethodPost || !truthy(r.FormValue("confirm")) {
		view := render.ConfirmView{
			Title:   "删除文章",
			Message: fmt.Sprintf("确定要删除文章「%s」吗？此操作无法撤销。", post.Title),
			Action:  postPath(id, "delete"),
			Cancel:  "/admin",
		}
		if c.admin.SyncConfigured() {
			view.Option = "同时从 GitHub 删除"
		}
		c.confirmPage(w, r, view)
		return
	}

	outcome, err := c.admin.WithConfirmer(gatesFrom(r)).DeletePost(r.Context(), id)
	if err != nil {
		c.dashboard(w, r, "", errorText(err))
		return
	}
	if outcome.Err != nil {
		c.dashboard(w, r, flashes["deleted"], "从 GitHub 删除失败: "+outcome.Err.Error())
		return
	}
	redirectFlash(w, r, "/admin", "deleted")
}

// SyncPost pushes one post to GitHub.
func (c *AdminController) SyncPost(w http.ResponseWriter, r *http.Request) {
	if err := c.admin.SyncPost(r.Context(), mux.Vars(r)["id"]); err != nil {
		c.dashboard(w, r, "", "同步失败: "+errorText(err))
		return
	}
	redirectFlash(w, r, "/admin", "synced")
}

// Settings shows the site settings and theme forms.
func (c *AdminController) Settings(w http.ResponseWriter, r *http.Request) {
	data := c.admin.Data(r.Context())
	c.page(w, r, http.StatusOK, "settings", render.SettingsView{Settings: data.Settings, Theme: data.Theme, Flash: flash(r)})
}

// UpdateSettings saves the settings form. Ticking sync also pushes
// _config.yml and the about page.
func (c *AdminController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	settings := models.SiteSettings{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: r.PostFormValue("description"),
		Author:      r.PostFormValue("author"),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		GitHub:      strings.TrimSpace(r.PostFormValue("github")),
		Twitter:     strings.TrimSpace(r.PostFormValue("twitter")),
		About:       r.PostFormValue("about"),
	}
	outcome, err := c.admin.WithConfirmer(gates{sync: truthy(r.PostFormValue("sync"))}).UpdateSettings(r.Context(), settings)
	if err != nil {
		view := render.SettingsView{Settings: settings, Theme: c.admin.Data(r.Context()).Theme, Error: errorText(err)}
		c.page(w, r, toApiErr(err).StatusCode, "settings", view)
		return
	}
	if outcome.Err != nil {
		data := c.admin.Data(r.Context())
		view := render.SettingsView{Settings: data.Settings, Theme: data.Theme, Flash: flashes["settings"], Error: "同步到 GitHub 失败: " + outcome.Err.Error()}
		c.page(w, r, http.StatusOK, "settings", view)
		return
	}
	redirectFlash(w, r, "/admin/settings", "settings")
}

// UpdateTheme saves the theme form.
func (c *AdminController) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	theme := models.ThemeConfig{
		PrimaryColor: r.PostFormValue("primaryColor"),
		AccentColor:  r.PostFormValue("accentColor"),
		FontFamily:   r.PostFormValue("fontFamily"),
		CustomCSS:    r.PostFormValue("customCSS"),
	}
	if err := c.admin.UpdateTheme(r.Context(), theme); err != nil {
		data := c.admin.Data(r.Context())
		c.page(w, r, toApiErr(err).StatusCode, "settings", render.SettingsView{Settings: data.Settings, Theme: theme, Error: errorText(err)})
		return
	}
	redirectFlash(w, r, "/admin/settings", "theme")
}

// Friends lists the friend links with a form to add one.
func (c *AdminController) Friends(w http.ResponseWriter, r *http.Request) {
	c.page(w, r, http.StatusOK, "friends", render.FriendsView{Links: c.admin.Data(r.Context()).FriendLinks, Flash: flash(r)})
}

// AddFriend appends a friend link from the form.
func (c *AdminController) AddFriend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	link := models.FriendLink{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		URL:         strings.TrimSpace(r.PostFormValue("url")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Avatar:      strings.TrimSpace(r.PostFormValue("avatar")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
	}
	if _, err := c.admin.AddFriendLink(r.Context(), link); err != nil {
		view := render.FriendsView{Links: c.admin.Data(r.Context()).FriendLinks, Draft: link, Error: errorText(err)}
		c.page(w, r, toApiErr(err).StatusCode, "friends", view)
		return
	}
	redirectFlash(w, r, "/admin/friends", "friend-added")
}

// RemoveFriend deletes a friend link after confirmation.
func (c *AdminController) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !truthy(r.FormValue("confirm")) {
		name := id
		for _, l := range c.admin.Data(r.Context()).FriendLinks {
			if l.ID == id {
				name = l.Name
			}
		}
		c.confirmPage(w, r, render.ConfirmView{
			Title:   "删除友链",
			Message: fmt.Sprintf("确定要删除友链「%s」吗？", name),
			Action:  "/admin/friends/" + url.PathEscape(id) + "/delete",
			Cancel:  "/admin/friends",
		})
		return
	}
	if err := c.admin.WithConfirmer(gatesFrom(r)).RemoveFriendLink(r.Context(), id); err != nil {
		view := render.FriendsView{Links: c.admin.Data(r.Context()).FriendLinks, Error: errorText(err)}
		c.page(w, r, toApiErr(err).StatusCode, "friends", view)
		return
	}
	redirectFlash(w, r, "/admin/friends", "friend-removed")
}

// Data shows the import, export and GitHub maintenance page.
func (c *AdminController) Data(w http.ResponseWriter, r *http.Request) {
	c.dataPage(w, r, http.StatusOK, flash(r), "")
}

func (c *AdminController) dataPage(w http.ResponseWriter, r *http.Request, status int, flash, errText string) {
	c.page(w, r, status, "data", render.DataView{SyncConfigured: c.admin.SyncConfigured(), Flash: flash, Error: errText})
}

// Export downloads the blog as JSON.
func (c *AdminController) Export(w http.ResponseWriter, r *http.Request) {
	name := services.ExportName(c.admin.Now())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := c.admin.Export(r.Context(), w); err != nil {
		c.logger.Error().Err(err).Msg("Export failed")
	}
}

// Import replaces the blog with an uploaded export. The form's confirm
// checkbox is the confirmation gate.
func (c *AdminController) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		c.dataPage(w, r, http.StatusBadRequest, "", "请选择要导入的 JSON 文件")
		return
	}
	defer file.Close()

	data, err := c.admin.WithConfirmer(gatesFrom(r)).Import(r.Context(), file)
	if errors.Is(err, services.ErrDeclined) {
		c.dataPage(w, r, http.StatusBadRequest, "", "请勾选确认框后再导入")
		return
	}
	if err != nil {
		c.dataPage(w, r, toApiErr(err).StatusCode, "", "导入失败: "+errorText(err))
		return
	}
	c.logger.Info().Int("posts", len(data.Posts)).Msg("Imported from upload")
	redirectFlash(w, r, "/admin/data", "imported")
}

// ImportMarkdown adds one post per uploaded Markdown file. Files that fail
// are listed; the others are kept.
func (c *AdminController) ImportMarkdown(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		c.dataPage(w, r, http.StatusBadRequest, "", "请选择要导入的 Markdown 文件")
		return
	}
	category := strings.TrimSpace(r.FormValue("category"))

	imported := 0
	var failures []string
	for _, fh := range r.MultipartForm.File["files"] {
		content, err := readUpload(fh)
		if err == nil {
			_, err = c.admin.ImportMarkdown(r.Context(), fh.Filename, content, category)
		}
		if err != nil {
			failures = append(failures, fh.Filename+": "+errorText(err))
			continue
		}
		imported++
	}

	status := http.StatusOK
	if imported == 0 && len(failures) > 0 {
		status = http.StatusBadRequest
	}
	c.dataPage(w, r, status, fmt.Sprintf("已导入 %d 篇文章", imported), strings.Join(failures, "; "))
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func syncLines(results []reposync.Result) []render.SyncLine {
	lines := make([]render.SyncLine, len(results))
	for i, res := range results {
		lines[i] = render.SyncLine{Name: res.Name, OK: res.Success, Error: res.Error()}
	}
	return lines
}

func (c *AdminController) report(w http.ResponseWriter, r *http.Request, title string, lines []render.SyncLine, err error) {
	view := render.SyncReportView{Title: title, Lines: lines}
	status := http.StatusOK
	if err != nil {
		view.Error = errorText(err)
		status = toApiErr(err).StatusCode
	}
	c.page(w, r, status, "sync", view)
}

// SyncAll pushes every post and shows the per-post results.
func (c *AdminController) SyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := c.admin.SyncAll(r.Context(), nil)
	c.report(w, r, "同步全部文章", syncLines(results), err)
}

// SyncSettings pushes _config.yml and the about page.
func (c *AdminController) SyncSettings(w http.ResponseWriter, r *http.Request) {
	results, err := c.admin.SyncSettings(r.Context())
	c.report(w, r, "同步站点设置", syncLines(results), err)
}

// SyncInit writes the Jekyll scaffold after confirmation.
func (c *AdminController) SyncInit(w http.ResponseWriter, r *http.Request) {
	if !truthy(r.FormValue("confirm")) {
		c.confirmPage(w, r, render.ConfirmView{
			Title:   "初始化 Jekyll 站点",
			Message: "将向仓库写入 Gemfile、index.html 和布局文件，已有的同名文件会被覆盖。",
			Action:  "/admin/sync/init",
			Cancel:  "/admin/data",
		})
		return
	}
	results, err := c.admin.WithConfirmer(gatesFrom(r)).InitializeSite(r.Context())
	c.report(w, r, "初始化 Jekyll 站点", syncLines(results), err)
}

// SyncPull merges the repository's posts after confirmation.
func (c *AdminController) SyncPull(w http.ResponseWriter, r *http.Request) {
	if !truthy(r.FormValue("confirm")) {
		c.confirmPage(w, r, render.ConfirmView{
			Title:   "从 GitHub 拉取文章",
			Message: "仓库中的文章将合并到本地，日期和 slug 相同的文章会被覆盖。",
			Action:  "/admin/sync/pull",
			Cancel:  "/admin/data",
		})
		return
	}
	report, err := c.admin.WithConfirmer(gatesFrom(r)).PullPosts(r.Context())
	var lines []render.SyncLine
	if err == nil {
		lines = append(lines,
			render.SyncLine{Name: fmt.Sprintf("新增 %d 篇", report.Added), OK: true},
			render.SyncLine{Name: fmt.Sprintf("更新 %d 篇", report.Updated), OK: true},
		)
		for _, f := range report.Failed {
			lines = append(lines, render.SyncLine{Name: f.Path, Error: f.Err.Error()})
		}
	}
	c.report(w, r, "从 GitHub 拉取文章", lines, err)
}
