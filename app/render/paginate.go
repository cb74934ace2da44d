package render

import (
	"strconv"

	"inkwell/app/models"
)

// Pagination is one page of posts and the controls around it.
type Pagination struct {
	Posts      []models.Post
	Current    int
	TotalPages int
	TotalPosts int
}

// Paginate returns the size-long window of posts for the 1-indexed page.
// page is clamped into range; there are ceil(len(posts)/size) pages.
func Paginate(posts []models.Post, page, size int) Pagination {
	if size <= 0 {
		size = models.DefaultPostsPerPage
	}
	total := (len(posts) + size - 1) / size
	page = min(max(page, 1), max(total, 1))

	start := min((page-1)*size, len(posts))
	end := min(start+size, len(posts))
	return Pagination{
		Posts:      posts[start:end],
		Current:    page,
		TotalPages: total,
		TotalPosts: len(posts),
	}
}

func (p Pagination) HasPrev() bool { return p.Current > 1 }
func (p Pagination) HasNext() bool { return p.Current < p.TotalPages }
func (p Pagination) Prev() int     { return p.Current - 1 }
func (p Pagination) Next() int     { return p.Current + 1 }

// Pages lists the page numbers, 1 to TotalPages.
func (p Pagination) Pages() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// PageURL is the path of a home page. Page 1 is the site root.
func PageURL(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/page/" + strconv.Itoa(n) + "/"
}
