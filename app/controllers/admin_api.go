package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"inkwell/app/errs"
	"inkwell/app/models"
	"inkwell/app/reposync"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// JSON variants of the admin operations, mounted under /api/admin. Gates
// are answered by ?confirm=true and ?sync=true.

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

type syncJSON struct {
	Attempted bool   `json:"attempted"`
	Error     string `json:"error,omitempty"`
}

func outcomeJSON(o services.SyncOutcome) syncJSON {
	out := syncJSON{Attempted: o.Attempted}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

type resultJSON struct {
	Name    string `json:"name"`
	PostID  string `json:"postId,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func resultsJSON(results []reposync.Result) []resultJSON {
	out := make([]resultJSON, len(results))
	for i, res := range results {
		out[i] = resultJSON{Name: res.Name, PostID: res.PostID, Success: res.Success, Error: res.Error()}
	}
	return out
}

// APIListPosts returns every post.
func (c *AdminController) APIListPosts(w http.ResponseWriter, r *http.Request) {
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": c.admin.Data(r.Context()).Posts})
}

// APISavePost creates a post (POST) or replaces one (PUT with {id}).
func (c *AdminController) APISavePost(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := decodeJSON(r, &post); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	status := http.StatusCreated
	if id, ok := mux.Vars(r)["id"]; ok {
		if _, err := c.admin.Post(r.Context(), id); err != nil {
			c.respond.WriteError(w, r, err)
			return
		}
		post.ID = id
		status = http.StatusOK
	}

	saved, outcome, err := c.admin.WithConfirmer(gatesFrom(r)).SavePost(r.Context(), post)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, status, map[string]interface{}{
		"post": saved,
		"sync": outcomeJSON(outcome),
	})
}

// APIDeletePost deletes a post. Without confirm=true nothing changes and
// the answer is 400.
func (c *AdminController) APIDeletePost(w http.ResponseWriter, r *http.Request) {
	outcome, err := c.admin.WithConfirmer(gatesFrom(r)).DeletePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"sync": outcomeJSON(outcome)})
}

// APISyncPost pushes one post.
func (c *AdminController) APISyncPost(w http.ResponseWriter, r *http.Request) {
	if err := c.admin.SyncPost(r.Context(), mux.Vars(r)["id"]); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AdminController) APIUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.SiteSettings
	if err := decodeJSON(r, &settings); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	outcome, err := c.admin.WithConfirmer(gatesFrom(r)).UpdateSettings(r.Context(), settings)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"settings": c.admin.Data(r.Context()).Settings,
		"sync":     outcomeJSON(outcome),
	})
}

func (c *AdminController) APIUpdateTheme(w http.ResponseWriter, r *http.Request) {
	var theme models.ThemeConfig
	if err := decodeJSON(r, &theme); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	if err := c.admin.UpdateTheme(r.Context(), theme); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, c.admin.Data(r.Context()).Theme)
}

// APIImport replaces the blog with the JSON body.
func (c *AdminController) APIImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	data, err := c.admin.WithConfirmer(gatesFrom(r)).Import(r.Context(), r.Body)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": len(data.Posts)})
}

// APIImportMarkdown adds the Markdown body as a post. ?name= is the file
// name used for the title fallback.
func (c *AdminController) APIImportMarkdown(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		c.respond.WriteError(w, r, errs.NewValidationError("name", "name is required"))
		return
	}
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		c.respond.WriteError(w, r, errs.NewBadRequestError(err.Error()))
		return
	}
	post, err := c.admin.ImportMarkdown(r.Context(), name, content, r.URL.Query().Get("category"))
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusCreated, post)
}

// APIAddFriend appends a friend link.
func (c *AdminController) APIAddFriend(w http.ResponseWriter, r *http.Request) {
	var link models.FriendLink
	if err := decodeJSON(r, &link); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	added, err := c.admin.AddFriendLink(r.Context(), link)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusCreated, added)
}

// APIUpdateFriend replaces the friend link {id}.
func (c *AdminController) APIUpdateFriend(w http.ResponseWriter, r *http.Request) {
	var link models.FriendLink
	if err := decodeJSON(r, &link); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	link.ID = mux.Vars(r)["id"]
	if err := c.admin.UpdateFriendLink(r.Context(), link); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, link)
}

// APIRemoveFriend deletes the friend link {id} when confirm=true.
func (c *AdminController) APIRemoveFriend(w http.ResponseWriter, r *http.Request) {
	if err := c.admin.WithConfirmer(gatesFrom(r)).RemoveFriendLink(r.Context(), mux.Vars(r)["id"]); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// APISync runs the repository operation named by {op}: all, settings, init
// or pull.
func (c *AdminController) APISync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	svc := c.admin.WithConfirmer(gatesFrom(r))

	var results []reposync.Result
	var err error
	switch op := mux.Vars(r)["op"]; op {
	case "all":
		results, err = svc.SyncAll(ctx, nil)
	case "settings":
		results, err = svc.SyncSettings(ctx)
	case "init":
		results, err = svc.InitializeSite(ctx)
	case "pull":
		report, err := svc.PullPosts(ctx)
		if err != nil {
			c.respond.WriteError(w, r, err)
			return
		}
		failed := make([]resultJSON, len(report.Failed))
		for i, f := range report.Failed {
			failed[i] = resultJSON{Name: f.Path, Error: f.Err.Error()}
		}
		c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"added":   report.Added,
			"updated": report.Updated,
			"failed":  failed,
		})
		return
	default:
		c.respond.WriteError(w, r, errs.NewNotFoundError("sync operation "+op))
		return
	}
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": resultsJSON(results)})
}

// Preview renders Markdown from the editor's content field. API requests
// send {"content": ...} and get {"html": ...}.
func (c *AdminController) Preview(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		var body struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &body); err != nil {
			c.respond.WriteError(w, r, err)
			return
		}
		c.respond.WriteJSON(w, http.StatusOK, map[string]string{"html": string(c.renderer.Markdown(body.Content))})
		return
	}
	if err := r.ParseForm(); err != nil {
		c.respond.WriteError(w, r, errs.NewBadRequestError("failed to parse form"))
		return
	}
	c.page(w, r, http.StatusOK, "preview", c.renderer.Markdown(r.PostFormValue("content")))
}

// PreviewSocket renders every text message it receives as Markdown and
// sends the HTML back.
func (c *AdminController) PreviewSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Preview websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("Preview websocket read")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		html := c.renderer.Markdown(string(msg))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(html)); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Warn().Err(err).Msg("Preview websocket write")
			}
			return
		}
	}
}
