package models

import (
	"strconv"
	"strings"
	"time"
)

// UpdatedLayout matches the millisecond ISO-8601 form browsers produce for toISOString.
const UpdatedLayout = "2006-01-02T15:04:05.000Z07:00"

// dateLayouts are the accepted forms of Post.Date, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if strings.TrimSpace(p.Title) == "" {
		return &FieldError{Field: "title", Message: "title cannot be blank"}
	}
	if strings.TrimSpace(p.Content) == "" {
		return &FieldError{Field: "content", Message: "content cannot be blank"}
	}

	return nil
}

// BeforeSave assigns the id and slug when missing and stamps the update time.
func (p *Post) BeforeSave(now time.Time) {
	if p.ID == "" {
		p.ID = strconv.FormatInt(now.UnixMilli(), 10)
	}
	if p.Slug == "" {
		p.Slug = DeriveSlug(p.Title)
	}
	if p.Slug == "" {
		p.Slug = p.ID
	}
	if p.Date == "" {
		p.Date = now.Format("2006-01-02T15:04")
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Updated = now.UTC().Format(UpdatedLayout)
}

// Summary returns the explicit excerpt, or one derived from the content.
func (p Post) Summary() string {
	if p.Excerpt != "" {
		return p.Excerpt
	}
	return Excerpt(p.Content)
}

// PublishedAt parses Date. The bool is false when Date is empty or unparseable.
func (p Post) PublishedAt() (time.Time, bool) {
	d := strings.TrimSpace(p.Date)
	if d == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, d, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateKey returns the YYYY-MM-DD form of Date used in repository file names.
func (p Post) DateKey() string {
	if t, ok := p.PublishedAt(); ok {
		return t.Format("2006-01-02")
	}
	if len(p.Date) >= 10 {
		return p.Date[:10]
	}
	return p.Date
}

// HasTag reports whether name is one of the post's tags.
func (p Post) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with p.
func (p Post) Clone() Post {
	c := p
	if p.Tags != nil {
		c.Tags = append([]string{}, p.Tags...)
	}
	return c
}
