package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name:    "valid post",
			post:    &Post{Title: "Valid Title", Content: "Some content"},
			wantErr: false,
		},
		{
			name:    "missing title",
			post:    &Post{Content: "Some content"},
			wantErr: true,
		},
		{
			name:    "blank title",
			post:    &Post{Title: "   ", Content: "Some content"},
			wantErr: true,
		},
		{
			name:    "missing content",
			post:    &Post{Title: "Valid Title"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeSave(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("new post gets id slug and timestamps", func(t *testing.T) {
		post := &Post{Title: "Hello", Content: "# Hi"}
		post.BeforeSave(now)

		assert.Equal(t, "1714555800000", post.ID)
		assert.Equal(t, "hello", post.Slug)
		assert.Equal(t, "2024-05-01T09:30:00.000Z", post.Updated)
		assert.NotNil(t, post.Tags)
	})

	t.Run("existing fields are kept", func(t *testing.T) {
		post := &Post{ID: "42", Title: "Hello", Slug: "custom", Content: "x", Date: "2023-01-02T10:00"}
		post.BeforeSave(now)

		assert.Equal(t, "42", post.ID)
		assert.Equal(t, "custom", post.Slug)
		assert.Equal(t, "2023-01-02T10:00", post.Date)
	})

	t.Run("title without word characters falls back to id", func(t *testing.T) {
		post := &Post{Title: "你好", Content: "x"}
		post.BeforeSave(now)
		assert.Equal(t, post.ID, post.Slug)
	})
}

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World! 123", "hello-world-123"},
		{"Hello", "hello"},
		{"  Go   Tips -- and Tricks ", "-go-tips-and-tricks-"},
		{"snake_case stays", "snake_case-stays"},
		{"Go语言 入门", "go-"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := DeriveSlug(tt.title)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, DeriveSlug(got), "derivation should be idempotent")
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, " Title and bold", Excerpt("# Title and **bold**"))

	long := strings.Repeat("字", 250)
	got := Excerpt(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 203, len([]rune(got)))
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime("a few words"))
	assert.Equal(t, 2, ReadingTime(strings.Repeat("word ", 201)))
	assert.Equal(t, 3, ReadingTime(strings.Repeat("汉", 401)))
	assert.Equal(t, 5, WordCount("Go语言很好"))
}

func TestPostPublishedAt(t *testing.T) {
	for _, date := range []string{"2024-03-05", "2024-03-05T08:00", "2024-03-05T08:00:00Z", "2024-03-05T08:00:00.000Z"} {
		p := Post{Date: date}
		got, ok := p.PublishedAt()
		require.True(t, ok, date)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, "2024-03-05", p.DateKey())
	}

	_, ok := Post{Date: "not a date"}.PublishedAt()
	assert.False(t, ok)
}

func TestBlogDataGrouping(t *testing.T) {
	data := BlogData{Posts: []Post{
		{ID: "3", Category: "Go", Tags: []string{"a", "b"}},
		{ID: "2", Category: "", Tags: []string{"b"}},
		{ID: "1", Category: "Go", Tags: []string{}},
	}}

	cats := data.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Go", cats[0].Name)
	assert.Len(t, cats[0].Posts, 2)

	tags := data.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0].Name)
	assert.Equal(t, "b", tags[1].Name)
	assert.Len(t, tags[1].Posts, 2)

	assert.Equal(t, 1, data.IndexOf("2"))
	assert.Equal(t, -1, data.IndexOf("9"))
}

func TestBlogDataRepairAndJSON(t *testing.T) {
	defaults := DefaultBlogData(time.Now())

	var data BlogData
	require.NoError(t, json.Unmarshal([]byte(`{"posts":[{"id":"1","title":"t","content":"c"}]}`), &data))
	data.Repair(defaults)

	assert.Equal(t, defaults.Settings, data.Settings)
	assert.Equal(t, defaults.Theme, data.Theme)
	assert.NotNil(t, data.FriendLinks)
	assert.NotNil(t, data.Posts[0].Tags)

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tags":[]`)
	assert.Contains(t, string(raw), `"friendLinks":[]`)
	assert.Contains(t, string(raw), `"primaryColor":"#3498db"`)
}

func TestBlogDataClone(t *testing.T) {
	data := DefaultBlogData(time.Now())
	c := data.Clone()
	c.Posts[0].Tags[0] = "changed"
	c.Posts = append(c.Posts, Post{ID: "2"})

	assert.Equal(t, "欢迎", data.Posts[0].Tags[0])
	assert.Len(t, data.Posts, 1)
}

func TestFriendLinkValidation(t *testing.T) {
	link := &FriendLink{Name: "Go", URL: "https://go.dev"}
	assert.NoError(t, link.Validate())
	link.BeforeCreate()
	assert.NotEmpty(t, link.ID)

	assert.Error(t, (&FriendLink{Name: "Go", URL: "not a url"}).Validate())
	assert.Error(t, (&FriendLink{URL: "https://go.dev"}).Validate())
}
