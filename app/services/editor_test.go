package services

import (
	"errors"
	"testing"

	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagInput(t *testing.T) {
	var in TagInput

	assert.True(t, in.Commit("Enter", "  go "))
	assert.False(t, in.Commit("Enter", "go"), "duplicate")
	assert.False(t, in.Commit("Enter", "   "), "blank")
	assert.False(t, in.Commit("Tab", "web"), "wrong key")
	assert.True(t, in.Commit("Enter", "web"))
	assert.True(t, in.Commit("Enter", "博客"))
	assert.Equal(t, []string{"go", "web", "博客"}, in.Tags())

	in.Remove("web")
	in.Remove("missing")
	assert.Equal(t, []string{"go", "博客"}, in.Tags())

	tags := in.Tags()
	tags[0] = "changed"
	assert.Equal(t, []string{"go", "博客"}, in.Tags())

	in.Reset([]string{"a", "a", "b"})
	assert.Equal(t, []string{"a", "a", "b"}, in.Tags())
	assert.False(t, in.Commit("Enter", "a"), "duplicate of a loaded chip")
}

func TestEditorNewPost(t *testing.T) {
	e := NewEditor()
	assert.Equal(t, Idle, e.State())

	_, err := e.Submit(PostForm{Title: "x"}, nil)
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, e.Cancel(), ErrNotEditing)

	e.Begin(nil)
	assert.Equal(t, Editing, e.State())
	assert.True(t, e.IsNew())
	e.Tags.Commit(CommitKey, "go")

	var got models.Post
	saved, err := e.Submit(PostForm{Title: " Hello ", Content: "body"}, func(p models.Post) (models.Post, error) {
		got = p
		p.ID = "100"
		return p, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "", got.ID)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.Equal(t, "100", saved.ID)
	assert.Equal(t, Idle, e.State())
	assert.Empty(t, e.Tags.Tags())
}

func TestEditorBeginKeepsStoredTags(t *testing.T) {
	post := models.Post{ID: "8", Title: "Dupes", Content: "c", Tags: []string{"go", "go", "web"}}
	e := NewEditor()
	e.Begin(&post)

	assert.Equal(t, []string{"go", "go", "web"}, e.Tags.Tags())

	e.Tags.Reset(nil)
	assert.Empty(t, e.Tags.Tags())
}

func TestEditorExistingPost(t *testing.T) {
	post := models.Post{ID: "7", Title: "Old", Slug: "old", Content: "c", Category: "cat", Tags: []string{"x", "y"}, Date: "2024-01-01"}
	e := NewEditor()
	e.Begin(&post)

	assert.False(t, e.IsNew())
	assert.Equal(t, "7", e.Target())
	assert.Equal(t, PostForm{Title: "Old", Slug: "old", Content: "c", Category: "cat", Date: "2024-01-01"}, e.Form())
	assert.Equal(t, []string{"x", "y"}, e.Tags.Tags())

	e.Tags.Remove("x")
	failing := errors.New("boom")
	_, err := e.Submit(PostForm{Title: "New"}, func(p models.Post) (models.Post, error) {
		assert.Equal(t, "7", p.ID)
		assert.Equal(t, []string{"y"}, p.Tags)
		return models.Post{}, failing
	})
	assert.ErrorIs(t, err, failing)
	assert.Equal(t, Editing, e.State(), "a failed save keeps the session open")
	assert.Equal(t, "New", e.Form().Title)

	require.NoError(t, e.Cancel())
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, "", e.Target())
	assert.Equal(t, "idle", e.State().String())
}
