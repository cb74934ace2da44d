package models

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError is a validation failure the validator tags cannot express.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// BlogData is the whole persisted blog. It is always saved and loaded as one value.
type BlogData struct {
	Posts       []Post       `json:"posts"`
	Settings    SiteSettings `json:"settings"`
	Theme       ThemeConfig  `json:"theme"`
	FriendLinks []FriendLink `json:"friendLinks"`
}

// Post represents a blog post. Content is the raw Markdown source; HTML is never stored.
type Post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title" validate:"required"`
	Slug     string   `json:"slug"`
	Content  string   `json:"content" validate:"required"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Date     string   `json:"date"`
	Updated  string   `json:"updated"`
}

// SiteSettings holds the site-wide metadata shown in headers and the about page.
type SiteSettings struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Email       string `json:"email" validate:"omitempty,email"`
	GitHub      string `json:"github"`
	Twitter     string `json:"twitter"`
	About       string `json:"about"`
}

// ThemeConfig is applied to every rendered page. CustomCSS is injected verbatim.
type ThemeConfig struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	FontFamily   string `json:"fontFamily"`
	CustomCSS    string `json:"customCSS"`
}

// FriendLink is an entry on the friends page.
type FriendLink struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description"`
	Avatar      string `json:"avatar,omitempty"`
	Category    string `json:"category"`
}

// Group is a named bucket of posts, such as a category or a tag.
type Group struct {
	Name  string
	Posts []Post
}
