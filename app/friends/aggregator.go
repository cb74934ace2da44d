package friends

import (
	"context"
	"time"

	"inkwell/app/models"

	"github.com/rs/zerolog"
)

// FeedResult is the outcome of reading one friend's feed.
type FeedResult struct {
	Link    models.FriendLink `json:"link"`
	FeedURL string            `json:"feedUrl,omitempty"`
	Items   []Item            `json:"items"`
	Err     error             `json:"-"`
}

// Error returns the failure message, or "".
func (r FeedResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Options configure an Aggregator.
type Options struct {
	Timeout  time.Duration
	Retry    int
	MaxItems int
}

// Aggregator collects the latest entries from friend sites.
type Aggregator struct {
	client   *Client
	maxItems int
	logger   zerolog.Logger
}

// NewAggregator returns an aggregator keeping at most MaxItems per feed
// (5 when unset).
func NewAggregator(opts Options, logger zerolog.Logger) *Aggregator {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 5
	}
	return &Aggregator{
		client:   NewClient(ClientOptions{Timeout: opts.Timeout, Retry: opts.Retry}),
		maxItems: opts.MaxItems,
		logger:   logger.With().Str("component", "friends").Logger(),
	}
}

// Discover finds the feed of siteURL.
func (a *Aggregator) Discover(ctx context.Context, siteURL string) (string, error) {
	return Discover(ctx, a.client, siteURL)
}

// Latest reads each link's feed in order. A failing site is recorded in its
// result and does not stop the others.
func (a *Aggregator) Latest(ctx context.Context, links []models.FriendLink) []FeedResult {
	results := make([]FeedResult, 0, len(links))
	for _, link := range links {
		res := FeedResult{Link: link, Items: []Item{}}
		if err := ctx.Err(); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		feedURL, err := a.Discover(ctx, link.URL)
		if err != nil {
			a.logger.Warn().Err(err).Str("site", link.URL).Msg("No feed found")
			res.Err = err
			results = append(results, res)
			continue
		}
		res.FeedURL = feedURL
		items, err := ParseFeed(ctx, a.client, feedURL, a.maxItems)
		if err != nil {
			a.logger.Warn().Err(err).Str("feed", feedURL).Msg("Feed unreadable")
			res.Err = err
		} else {
			res.Items = items
		}
		results = append(results, res)
	}
	return results
}
