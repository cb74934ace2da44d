package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/app/models"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrFriendLinkNotFound = errors.New("friend link not found")
)

// Action is a mutation of the blog. Actions are applied with Reduce.
type Action interface {
	apply(data models.BlogData, now time.Time) (models.BlogData, error)
}

// SavePost inserts a new post at the front or replaces the post with the same id.
type SavePost struct{ Post models.Post }

// DeletePost removes the post with ID.
type DeletePost struct{ ID string }

type UpdateSettings struct{ Settings models.SiteSettings }

type UpdateTheme struct{ Theme models.ThemeConfig }

// ReplaceAll swaps the whole blog, as an import does.
type ReplaceAll struct{ Data models.BlogData }

type AddFriendLink struct{ Link models.FriendLink }

type UpdateFriendLink struct{ Link models.FriendLink }

type RemoveFriendLink struct{ ID string }

// Reduce applies action to a copy of data. data itself is never modified, and
// on error the returned blog is the zero value.
func Reduce(data models.BlogData, action Action, now time.Time) (models.BlogData, error) {
	next, err := action.apply(data.Clone(), now)
	if err != nil {
		return models.BlogData{}, err
	}
	return next, nil
}

// PreparePost validates post and fills in what a save derives: the id, the
// slug and the update time. A generated id never collides with an existing post.
func PreparePost(data models.BlogData, post models.Post, now time.Time) (models.Post, error) {
	post = post.Clone()
	if err := post.Validate(); err != nil {
		return models.Post{}, err
	}
	if post.ID == "" {
		id := now.UnixMilli()
		for data.IndexOf(strconv.FormatInt(id, 10)) >= 0 {
			id++
		}
		post.ID = strconv.FormatInt(id, 10)
	}
	post.BeforeSave(now)
	return post, nil
}

func (a SavePost) apply(data models.BlogData, now time.Time) (models.BlogData, error) {
	post, err := PreparePost(data, a.Post, now)
	if err != nil {
		return data, err
	}
	if i := data.IndexOf(post.ID); i >= 0 {
		data.Posts[i] = post
		return data, nil
	}
	data.Posts = append([]models.Post{post}, data.Posts...)
	return data, nil
}

func (a DeletePost) apply(data models.BlogData, _ time.Time) (models.BlogData, error) {
	i := data.IndexOf(a.ID)
	if i < 0 {
		return data, fmt.Errorf("%w: %s", ErrPostNotFound, a.ID)
	}
	data.Posts = append(data.Posts[:i], data.Posts[i+1:]...)
	return data, nil
}

func (a UpdateSettings) apply(data models.BlogData, _ time.Time) (models.BlogData, error) {
	settings := a.Settings
	if err := settings.Validate(); err != nil {
		return data, err
	}
	data.Settings = settings
	return data, nil
}

func (a UpdateTheme) apply(data models.BlogData, _ time.Time) (models.BlogData, error) {
	theme := a.Theme
	if theme.FontFamily == "" {
		theme.FontFamily = models.DefaultTheme().FontFamily
	}
	data.Theme = theme
	return data, nil
}

func (a ReplaceAll) apply(_ models.BlogData, now time.Time) (models.BlogData, error) {
	data := a.Data.Clone()
	if a.Data.Posts == nil {
		data.Posts = nil
	}
	data.Repair(models.DefaultBlogData(now))
	return data, nil
}

func (a AddFriendLink) apply(data models.BlogData, _ time.Time) (models.BlogData, error) {
	link := a.Link
	if err := link.Validate(); err != nil {
		return data, err
	}
	link.BeforeCreate()
	data.FriendLinks = append(data.FriendLinks, link)
	return data, nil
}

func (a UpdateFriendLink) apply(data models.BlogData, _ time.Time) (models.BlogData, error) {
	link := a.Link
	if err := link.Validate(); err != nil {
		return data, err
	}
	for i := range data.FriendLinks {
		if data.FriendLinks[i].ID == link.ID {
			data.FriendLinks[i] = link
			return data, nil
		}
	}
	return data, fmt.Errorf("%w: %s", ErrFriendLinkNotFound, link.ID)
}

func (a RemoveFriendLink) apply(data models.BlogData, _ time.Time) (models.BlogData, error) {
	for i := range data.FriendLinks {
		if data.FriendLinks[i].ID == a.ID {
			data.FriendLinks = append(data.FriendLinks[:i], data.FriendLinks[i+1:]...)
			return data, nil
		}
	}
	return data, fmt.Errorf("%w: %s", ErrFriendLinkNotFound, a.ID)
}
