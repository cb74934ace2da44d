package services

import (
	"errors"
	"strings"

	"inkwell/app/models"
)

// ErrNotEditing is returned by Submit and Cancel outside an editing session.
var ErrNotEditing = errors.New("no post is being edited")

// CommitKey is the key that turns the tag input text into a chip.
const CommitKey = "Enter"

// TagInput holds the tag chips of the post form. Tags are always read back
// from the chips.
type TagInput struct {
	chips []string
}

// Commit adds text as a chip when key is the commit key and the trimmed text
// is non-empty and not already present. It reports whether a chip was added.
func (t *TagInput) Commit(key, text string) bool {
	if key != CommitKey {
		return false
	}
	tag := strings.TrimSpace(text)
	if tag == "" {
		return false
	}
	for _, c := range t.chips {
		if c == tag {
			return false
		}
	}
	t.chips = append(t.chips, tag)
	return true
}

// Remove drops the chip named tag.
func (t *TagInput) Remove(tag string) {
	for i, c := range t.chips {
		if c == tag {
			t.chips = append(t.chips[:i], t.chips[i+1:]...)
			return
		}
	}
}

// Tags returns the chips in insertion order.
func (t *TagInput) Tags() []string {
	return append([]string{}, t.chips...)
}

// Reset replaces all chips with tags as given. Only Commit filters.
func (t *TagInput) Reset(tags []string) {
	t.chips = append([]string(nil), tags...)
}

// EditorState is the phase of a post editing session.
type EditorState int

const (
	Idle EditorState = iota
	Editing
)

func (s EditorState) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// PostForm is the text fields of the post form. Tags come from the chips.
type PostForm struct {
	Title    string
	Slug     string
	Content  string
	Excerpt  string
	Category string
	Date     string
}

// Editor is one post editing session: Idle, then Editing a new or existing
// post, then back to Idle when the post is saved or the edit cancelled.
type Editor struct {
	state  EditorState
	target string
	form   PostForm
	Tags   TagInput
}

// NewEditor returns an idle editor.
func NewEditor() *Editor {
	return &Editor{}
}

func (e *Editor) State() EditorState { return e.state }

// Target is the id of the post being edited, or "" for a new post.
func (e *Editor) Target() string { return e.target }

// IsNew reports whether the session creates a post.
func (e *Editor) IsNew() bool { return e.state == Editing && e.target == "" }

// Form returns the current field values.
func (e *Editor) Form() PostForm { return e.form }

// Begin starts editing post, or a blank post when post is nil. The form and
// chips are populated from the post verbatim.
func (e *Editor) Begin(post *models.Post) {
	e.state = Editing
	if post == nil {
		e.target = ""
		e.form = PostForm{}
		e.Tags.Reset(nil)
		return
	}
	e.target = post.ID
	e.form = PostForm{
		Title:    post.Title,
		Slug:     post.Slug,
		Content:  post.Content,
		Excerpt:  post.Excerpt,
		Category: post.Category,
		Date:     post.Date,
	}
	e.Tags.Reset(post.Tags)
}

// Cancel abandons the session.
func (e *Editor) Cancel() error {
	if e.state != Editing {
		return ErrNotEditing
	}
	e.reset()
	return nil
}

// Submit builds the post from form and the chips and hands it to save. On
// success the session ends; on failure it stays open with the form kept.
func (e *Editor) Submit(form PostForm, save func(models.Post) (models.Post, error)) (models.Post, error) {
	if e.state != Editing {
		return models.Post{}, ErrNotEditing
	}
	e.form = form
	post := models.Post{
		ID:       e.target,
		Title:    strings.TrimSpace(form.Title),
		Slug:     strings.TrimSpace(form.Slug),
		Content:  form.Content,
		Excerpt:  strings.TrimSpace(form.Excerpt),
		Category: strings.TrimSpace(form.Category),
		Date:     strings.TrimSpace(form.Date),
		Tags:     e.Tags.Tags(),
	}
	saved, err := save(post)
	if err != nil {
		return models.Post{}, err
	}
	e.reset()
	return saved, nil
}

func (e *Editor) reset() {
	e.state = Idle
	e.target = ""
	e.form = PostForm{}
	e.Tags.Reset(nil)
}
