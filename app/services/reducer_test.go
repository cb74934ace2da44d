package services

import (
	"testing"
	"time"

	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func sampleData() models.BlogData {
	data := models.DefaultBlogData(fixedNow)
	data.Posts = []models.Post{
		{ID: "2", Title: "Second", Slug: "second", Content: "two", Tags: []string{"b"}, Date: "2024-04-02"},
		{ID: "1", Title: "First", Slug: "first", Content: "one", Tags: []string{"a"}, Date: "2024-04-01"},
	}
	return data
}

func TestReduceSavePostNew(t *testing.T) {
	data := sampleData()
	next, err := Reduce(data, SavePost{Post: models.Post{Title: "Hello", Content: "# Hi\n**there**"}}, fixedNow)
	require.NoError(t, err)

	require.Len(t, next.Posts, 3)
	created := next.Posts[0]
	assert.Equal(t, "1714555800000", created.ID)
	assert.Equal(t, "hello", created.Slug)
	assert.Equal(t, "2024-05-01T09:30:00.000Z", created.Updated)
	assert.Equal(t, []string{}, created.Tags)
	assert.Len(t, data.Posts, 2, "input must not change")
}

func TestReduceSavePostReplacesInPlace(t *testing.T) {
	data := sampleData()
	edited := data.Posts[1]
	edited.Title = "First, edited"
	edited.Slug = ""

	later := fixedNow.Add(time.Hour)
	next, err := Reduce(data, SavePost{Post: edited}, later)
	require.NoError(t, err)

	require.Len(t, next.Posts, 2)
	assert.Equal(t, "1", next.Posts[1].ID)
	assert.Equal(t, "first-edited", next.Posts[1].Slug)
	assert.Equal(t, "2024-05-01T10:30:00.000Z", next.Posts[1].Updated)
	assert.Equal(t, "First", data.Posts[1].Title)
}

func TestReduceSavePostIdempotent(t *testing.T) {
	data := sampleData()
	first, err := Reduce(data, SavePost{Post: models.Post{Title: "Hello", Content: "x"}}, fixedNow)
	require.NoError(t, err)
	saved := first.Posts[0]

	second, err := Reduce(first, SavePost{Post: saved}, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	again := second.Posts[0]

	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, saved.Slug, again.Slug)
	assert.NotEqual(t, saved.Updated, again.Updated)
	again.Updated = saved.Updated
	assert.Equal(t, saved, again)
}

func TestReduceSavePostGeneratesUniqueIDs(t *testing.T) {
	data := sampleData()
	var err error
	for i := 0; i < 3; i++ {
		data, err = Reduce(data, SavePost{Post: models.Post{Title: "Same", Content: "x"}}, fixedNow)
		require.NoError(t, err)
	}
	ids := map[string]bool{}
	for _, p := range data.Posts {
		ids[p.ID] = true
	}
	assert.Len(t, ids, 5)
}

func TestReduceSavePostValidation(t *testing.T) {
	data := sampleData()
	for _, post := range []models.Post{
		{Title: "", Content: "x"},
		{Title: "x", Content: ""},
		{Title: "   ", Content: "x"},
	} {
		next, err := Reduce(data, SavePost{Post: post}, fixedNow)
		assert.Error(t, err)
		assert.Empty(t, next.Posts)
	}
	assert.Len(t, data.Posts, 2)
}

func TestReduceDeletePost(t *testing.T) {
	data := sampleData()
	next, err := Reduce(data, DeletePost{ID: "2"}, fixedNow)
	require.NoError(t, err)
	require.Len(t, next.Posts, 1)
	assert.Equal(t, "1", next.Posts[0].ID)
	assert.Len(t, data.Posts, 2)
	assert.Equal(t, "2", data.Posts[0].ID)

	_, err = Reduce(data, DeletePost{ID: "nope"}, fixedNow)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestReduceSettingsAndTheme(t *testing.T) {
	data := sampleData()

	_, err := Reduce(data, UpdateSettings{Settings: models.SiteSettings{Title: ""}}, fixedNow)
	assert.Error(t, err)
	_, err = Reduce(data, UpdateSettings{Settings: models.SiteSettings{Title: "x", Email: "nope"}}, fixedNow)
	assert.Error(t, err)

	next, err := Reduce(data, UpdateSettings{Settings: models.SiteSettings{Title: "New"}}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "New", next.Settings.Title)

	next, err = Reduce(data, UpdateTheme{Theme: models.ThemeConfig{PrimaryColor: "#000", CustomCSS: "body{}"}}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "#000", next.Theme.PrimaryColor)
	assert.Equal(t, "system", next.Theme.FontFamily)
	assert.Equal(t, "body{}", next.Theme.CustomCSS)
}

func TestReduceReplaceAll(t *testing.T) {
	data := sampleData()
	next, err := Reduce(data, ReplaceAll{Data: models.BlogData{Posts: []models.Post{{ID: "9", Title: "Only", Content: "x"}}}}, fixedNow)
	require.NoError(t, err)
	require.Len(t, next.Posts, 1)
	assert.Equal(t, []string{}, next.Posts[0].Tags)
	assert.Equal(t, models.DefaultSettings(), next.Settings)

	seeded, err := Reduce(data, ReplaceAll{Data: models.BlogData{}}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBlogData(fixedNow).Posts, seeded.Posts)
}

func TestReduceFriendLinks(t *testing.T) {
	data := sampleData()

	_, err := Reduce(data, AddFriendLink{Link: models.FriendLink{Name: "x", URL: "not a url"}}, fixedNow)
	assert.Error(t, err)

	next, err := Reduce(data, AddFriendLink{Link: models.FriendLink{Name: "Go", URL: "https://go.dev"}}, fixedNow)
	require.NoError(t, err)
	require.Len(t, next.FriendLinks, 1)
	link := next.FriendLinks[0]
	assert.NotEmpty(t, link.ID)
	assert.Empty(t, data.FriendLinks)

	link.Category = "lang"
	next, err = Reduce(next, UpdateFriendLink{Link: link}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "lang", next.FriendLinks[0].Category)

	_, err = Reduce(next, UpdateFriendLink{Link: models.FriendLink{ID: "missing", Name: "x", URL: "https://x.dev"}}, fixedNow)
	assert.ErrorIs(t, err, ErrFriendLinkNotFound)

	next, err = Reduce(next, RemoveFriendLink{ID: link.ID}, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, next.FriendLinks)

	_, err = Reduce(next, RemoveFriendLink{ID: link.ID}, fixedNow)
	assert.ErrorIs(t, err, ErrFriendLinkNotFound)
}
