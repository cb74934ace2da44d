package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/reposync"

	"github.com/rs/zerolog"
)

// ErrDeclined is returned when a confirmation gate is answered no.
var ErrDeclined = errors.New("operation cancelled")

// Confirmer is a yes/no gate in front of destructive or remote operations.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// SyncConfirmer is implemented by confirmers that answer the optional
// remote push after a local change separately from the other gates.
type SyncConfirmer interface {
	ConfirmSync(ctx context.Context, prompt string) (bool, error)
}

// Answer is a Confirmer that always gives the same answer.
type Answer bool

func (a Answer) Confirm(context.Context, string) (bool, error) {
	return bool(a), nil
}

// Publisher pushes content to the remote repository.
type Publisher interface {
	IsConfigured() bool
	SavePost(ctx context.Context, post models.Post) error
	DeletePost(ctx context.Context, post models.Post) error
	SaveSettings(ctx context.Context, settings models.SiteSettings) []reposync.Result
	SyncAllPosts(ctx context.Context, posts []models.Post, progress func(done, total int)) []reposync.Result
	InitializeSite(ctx context.Context) []reposync.Result
	PullPosts(ctx context.Context) ([]reposync.PulledPost, error)
}

// SyncOutcome reports the remote step that follows a local change. A failed
// sync never undoes the local change.
type SyncOutcome struct {
	Attempted bool
	Err       error
}

// OK reports whether the sync ran and succeeded.
func (o SyncOutcome) OK() bool { return o.Attempted && o.Err == nil }

// PullReport summarises a merge of remote posts.
type PullReport struct {
	Added   int
	Updated int
	Failed  []reposync.PulledPost
}

// AdminService carries out the admin operations against the content store
// and, when configured, the remote repository.
type AdminService struct {
	content   *repositories.ContentStore
	publisher Publisher
	confirmer Confirmer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAdminService returns a service. A nil confirmer answers no to every
// gate; a nil publisher means sync is not configured.
func NewAdminService(content *repositories.ContentStore, publisher Publisher, confirmer Confirmer, logger zerolog.Logger, now func() time.Time) *AdminService {
	if confirmer == nil {
		confirmer = Answer(false)
	}
	if now == nil {
		now = time.Now
	}
	return &AdminService{
		content:   content,
		publisher: publisher,
		confirmer: confirmer,
		logger:    logger.With().Str("component", "admin").Logger(),
		now:       now,
	}
}

// WithConfirmer returns a copy of s that asks c instead.
func (s *AdminService) WithConfirmer(c Confirmer) *AdminService {
	cp := *s
	if c == nil {
		c = Answer(false)
	}
	cp.confirmer = c
	return &cp
}

// SyncConfigured reports whether a remote repository is set up.
func (s *AdminService) SyncConfigured() bool {
	return s.publisher != nil && s.publisher.IsConfigured()
}

// Data returns the current blog.
func (s *AdminService) Data(ctx context.Context) models.BlogData {
	return s.content.Load(ctx)
}

// Post returns the post with id.
func (s *AdminService) Post(ctx context.Context, id string) (models.Post, error) {
	post, ok := s.Data(ctx).FindPost(id)
	if !ok {
		return models.Post{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	return post, nil
}

func (s *AdminService) confirm(ctx context.Context, prompt string) (bool, error) {
	ok, err := s.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return ok, nil
}

// offerSync runs push when sync is configured and the gate accepts prompt.
func (s *AdminService) offerSync(ctx context.Context, prompt string, push func() error) SyncOutcome {
	if !s.SyncConfigured() {
		return SyncOutcome{}
	}
	var ok bool
	var err error
	if sc, isSync := s.confirmer.(SyncConfirmer); isSync {
		ok, err = sc.ConfirmSync(ctx, prompt)
	} else {
		ok, err = s.confirm(ctx, prompt)
	}
	if err != nil {
		return SyncOutcome{Err: err}
	}
	if !ok {
		return SyncOutcome{}
	}
	if err := push(); err != nil {
		s.logger.Error().Err(err).Msg("Sync failed")
		return SyncOutcome{Attempted: true, Err: err}
	}
	return SyncOutcome{Attempted: true}
}

// SavePost inserts or replaces post, then offers to push it.
func (s *AdminService) SavePost(ctx context.Context, post models.Post) (models.Post, SyncOutcome, error) {
	var saved models.Post
	_, err := s.content.Update(ctx, func(data models.BlogData) (models.BlogData, error) {
		now := s.now()
		prepared, err := PreparePost(data, post, now)
		if err != nil {
			return data, err
		}
		saved = prepared
		return Reduce(data, SavePost{Post: prepared}, now)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("title", post.Title).Msg("Post not saved")
		return models.Post{}, SyncOutcome{}, err
	}
	s.logger.Info().Str("id", saved.ID).Str("title", saved.Title).Msg("Post saved")

	outcome := s.offerSync(ctx, "Sync this post to GitHub?", func() error {
		return s.publisher.SavePost(ctx, saved)
	})
	return saved, outcome, nil
}

// DeletePost removes the post after confirmation, then offers to delete the
// remote copy. A declined confirmation changes nothing.
func (s *AdminService) DeletePost(ctx context.Context, id string) (SyncOutcome, error) {
	post, err := s.Post(ctx, id)
	if err != nil {
		return SyncOutcome{}, err
	}
	ok, err := s.confirm(ctx, fmt.Sprintf("Delete post %q?", post.Title))
	if err != nil {
		return SyncOutcome{}, err
	}
	if !ok {
		return SyncOutcome{}, ErrDeclined
	}

	if _, err := s.content.Update(ctx, func(data models.BlogData) (models.BlogData, error) {
		return Reduce(data, DeletePost{ID: id}, s.now())
	}); err != nil {
		return SyncOutcome{}, err
	}
	s.logger.Info().Str("id", id).Msg("Post deleted")

	outcome := s.offerSync(ctx, "Delete it from GitHub too?", func() error {
		return s.publisher.DeletePost(ctx, post)
	})
	return outcome, nil
}

// UpdateSettings saves the site settings, then offers to push _config.yml
// and the about page.
func (s *AdminService) UpdateSettings(ctx context.Context, settings models.SiteSettings) (SyncOutcome, error) {
	if err := s.apply(ctx, UpdateSettings{Settings: settings}); err != nil {
		return SyncOutcome{}, err
	}
	s.logger.Info().Msg("Settings updated")
	outcome := s.offerSync(ctx, "Sync settings to GitHub?", func() error {
		return resultsError(s.publisher.SaveSettings(ctx, settings))
	})
	return outcome, nil
}

// UpdateTheme saves the theme.
func (s *AdminService) UpdateTheme(ctx context.Context, theme models.ThemeConfig) error {
	return s.apply(ctx, UpdateTheme{Theme: theme})
}

func (s *AdminService) apply(ctx context.Context, action Action) error {
	_, err := s.content.Update(ctx, func(data models.BlogData) (models.BlogData, error) {
		return Reduce(data, action, s.now())
	})
	return err
}

// Export writes the blog as JSON.
func (s *AdminService) Export(ctx context.Context, w io.Writer) error {
	return s.content.Export(ctx, w)
}

// ExportName is the download name of an export made at now.
func ExportName(now time.Time) string {
	return "blog-backup-" + now.Format("2006-01-02") + ".json"
}

// Import replaces the whole blog with the JSON in r after confirmation.
func (s *AdminService) Import(ctx context.Context, r io.Reader) (models.BlogData, error) {
	incoming, err := repositories.DecodeBlogData(r)
	if err != nil {
		return models.BlogData{}, err
	}
	ok, err := s.confirm(ctx, fmt.Sprintf("Replace all data with %d imported posts?", len(incoming.Posts)))
	if err != nil {
		return models.BlogData{}, err
	}
	if !ok {
		return models.BlogData{}, ErrDeclined
	}
	data, err := s.content.Update(ctx, func(current models.BlogData) (models.BlogData, error) {
		return Reduce(current, ReplaceAll{Data: incoming}, s.now())
	})
	if err != nil {
		return models.BlogData{}, err
	}
	s.logger.Info().Int("posts", len(data.Posts)).Msg("Blog data imported")
	return data, nil
}

// ImportMarkdown adds a post parsed from a Markdown file with optional front
// matter. category, when set, applies to files that name none.
func (s *AdminService) ImportMarkdown(ctx context.Context, name string, content []byte, category string) (models.Post, error) {
	post, err := ParseMarkdownFile(name, content)
	if err != nil {
		return models.Post{}, err
	}
	if post.Category == "" {
		post.Category = category
	}
	var saved models.Post
	_, err = s.content.Update(ctx, func(data models.BlogData) (models.BlogData, error) {
		now := s.now()
		prepared, err := PreparePost(data, post, now)
		if err != nil {
			return data, err
		}
		saved = prepared
		return Reduce(data, SavePost{Post: prepared}, now)
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("importing %s: %w", name, err)
	}
	s.logger.Info().Str("file", name).Str("id", saved.ID).Msg("Markdown imported")
	return saved, nil
}

// AddFriendLink appends a friend link.
func (s *AdminService) AddFriendLink(ctx context.Context, link models.FriendLink) (models.FriendLink, error) {
	data, err := s.content.Update(ctx, func(data models.BlogData) (models.BlogData, error) {
		return Reduce(data, AddFriendLink{Link: link}, s.now())
	})
	if err != nil {
		return models.FriendLink{}, err
	}
	return data.FriendLinks[len(data.FriendLinks)-1], nil
}

// UpdateFriendLink replaces the friend link with the same id.
func (s *AdminService) UpdateFriendLink(ctx context.Context, link models.FriendLink) error {
	return s.apply(ctx, UpdateFriendLink{Link: link})
}

// RemoveFriendLink deletes a friend link after confirmation.
func (s *AdminService) RemoveFriendLink(ctx context.Context, id string) error {
	ok, err := s.confirm(ctx, "Remove this friend link?")
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return s.apply(ctx, RemoveFriendLink{ID: id})
}

func (s *AdminService) requireSync() error {
	if !s.SyncConfigured() {
		return reposync.ErrNotConfigured
	}
	return nil
}

// SyncPost pushes one post.
func (s *AdminService) SyncPost(ctx context.Context, id string) error {
	if err := s.requireSync(); err != nil {
		return err
	}
	post, err := s.Post(ctx, id)
	if err != nil {
		return err
	}
	return s.publisher.SavePost(ctx, post)
}

// SyncAll pushes every post. Individual failures are in the results.
func (s *AdminService) SyncAll(ctx context.Context, progress func(done, total int)) ([]reposync.Result, error) {
	if err := s.requireSync(); err != nil {
		return nil, err
	}
	results := s.publisher.SyncAllPosts(ctx, s.Data(ctx).Posts, progress)
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.logger.Info().Int("total", len(results)).Int("failed", failed).Msg("Sync all finished")
	return results, nil
}

// SyncSettings pushes _config.yml and the about page.
func (s *AdminService) SyncSettings(ctx context.Context) ([]reposync.Result, error) {
	if err := s.requireSync(); err != nil {
		return nil, err
	}
	return s.publisher.SaveSettings(ctx, s.Data(ctx).Settings), nil
}

// InitializeSite writes the Jekyll scaffold after confirmation.
func (s *AdminService) InitializeSite(ctx context.Context) ([]reposync.Result, error) {
	if err := s.requireSync(); err != nil {
		return nil, err
	}
	ok, err := s.confirm(ctx, "Write the Jekyll site files to the repository?")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDeclined
	}
	return s.publisher.InitializeSite(ctx), nil
}

// PullPosts merges the repository's posts into the blog after confirmation.
// A remote post replaces the local post with the same date and slug, keeping
// its id; other remote posts are added at the front.
func (s *AdminService) PullPosts(ctx context.Context) (PullReport, error) {
	if err := s.requireSync(); err != nil {
		return PullReport{}, err
	}
	pulled, err := s.publisher.PullPosts(ctx)
	if err != nil {
		return PullReport{}, err
	}

	var report PullReport
	var incoming []reposync.PulledPost
	for _, p := range pulled {
		if p.Err != nil {
			report.Failed = append(report.Failed, p)
			continue
		}
		incoming = append(incoming, p)
	}
	if len(incoming) == 0 {
		return report, nil
	}

	ok, err := s.confirm(ctx, fmt.Sprintf("Merge %d posts from GitHub?", len(incoming)))
	if err != nil {
		return PullReport{}, err
	}
	if !ok {
		return PullReport{}, ErrDeclined
	}

	failed := report.Failed
	_, err = s.content.Update(ctx, func(data models.BlogData) (models.BlogData, error) {
		report = PullReport{Failed: failed}
		now := s.now()
		for _, item := range incoming {
			post := item.Post
			post.ID = ""
			for _, existing := range data.Posts {
				if existing.Slug == post.Slug && existing.DateKey() == post.DateKey() {
					post.ID = existing.ID
					break
				}
			}
			next, err := Reduce(data, SavePost{Post: post}, now)
			if err != nil {
				item.Err = err
				report.Failed = append(report.Failed, item)
				continue
			}
			if post.ID == "" {
				report.Added++
			} else {
				report.Updated++
			}
			data = next
		}
		return data, nil
	})
	if err != nil {
		return PullReport{}, err
	}
	s.logger.Info().Int("added", report.Added).Int("updated", report.Updated).Int("failed", len(report.Failed)).Msg("Pulled posts")
	return report, nil
}

func resultsError(results []reposync.Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Now is the service clock.
func (s *AdminService) Now() time.Time {
	return s.now()
}
