package friends

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"inkwell/app/markdown"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const summaryLength = 140

// Item is one entry of a friend's feed.
type Item struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Author    string    `json:"author,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published"`
	Updated   time.Time `json:"updated"`
}

// candidatePaths are tried in order before falling back to the page's
// <link rel="alternate"> declaration.
var candidatePaths = []string{
	"/atom.xml",
	"/feed.xml",
	"/rss.xml",
	"/index.xml",
	"/feed",
	"/feed/",
	"/rss",
	"/atom",
	"/feed.json",
}

// Discover finds the feed URL of a site.
func Discover(ctx context.Context, cl *Client, site string) (string, error) {
	for _, p := range candidatePaths {
		u := joinURL(site, p)
		if probeFeed(ctx, cl, u) {
			return u, nil
		}
	}

	resp, err := cl.Get(ctx, site)
	if err != nil {
		return "", fmt.Errorf("GET site %s: %w", site, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var found string
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		typ := strings.ToLower(s.AttrOr("type", ""))
		href := s.AttrOr("href", "")
		if href == "" || !strings.Contains(rel, "alternate") {
			return true
		}
		if strings.Contains(typ, "rss") || strings.Contains(typ, "atom") || strings.Contains(typ, "json") {
			found = joinURL(site, href)
			return false
		}
		return true
	})
	if found != "" && probeFeed(ctx, cl, found) {
		return found, nil
	}
	return "", fmt.Errorf("no feed discovered for %s", site)
}

// probeFeed reports whether feedURL looks like a feed, judging by the
// content type and the first bytes of the body.
func probeFeed(ctx context.Context, cl *Client, feedURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	resp, err := cl.Get(ctx, feedURL)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	head, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	lower := bytes.ToLower(head)
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "rss"), strings.Contains(ct, "atom"):
		return true
	case strings.Contains(ct, "json"):
		return bytes.Contains(lower, []byte("jsonfeed.org/version"))
	}
	return bytes.Contains(lower, []byte("<rss")) || bytes.Contains(lower, []byte("<feed")) || bytes.Contains(lower, []byte("<rdf"))
}

// ParseFeed fetches feedURL and returns at most max items (0 means all).
func ParseFeed(ctx context.Context, cl *Client, feedURL string, max int) ([]Item, error) {
	resp, err := cl.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("GET feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, Item{
			Title:     strings.TrimSpace(it.Title),
			Link:      joinURL(feedURL, strings.TrimSpace(it.Link)),
			Author:    authorName(it),
			Summary:   summarize(it.Description),
			Published: pickTime(it.PublishedParsed, it.UpdatedParsed),
			Updated:   pickTime(it.UpdatedParsed, it.PublishedParsed),
		})
		if max > 0 && len(items) >= max {
			break
		}
	}
	return items, nil
}

func summarize(description string) string {
	text := []rune(markdown.PlainText(description))
	if len(text) <= summaryLength {
		return string(text)
	}
	return string(text[:summaryLength]) + "..."
}

func pickTime(a, b *time.Time) time.Time {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return time.Time{}
}

func authorName(it *gofeed.Item) string {
	if it.Author == nil {
		return ""
	}
	if it.Author.Name != "" {
		return it.Author.Name
	}
	return it.Author.Email
}

// joinURL resolves ref against base.
func joinURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return base + ref
	}
	return u.ResolveReference(r).String()
}
