package reposync

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"inkwell/app/models"

	"github.com/rs/zerolog"
)

//go:embed all:scaffold
var scaffold embed.FS

// ErrNotConfigured is returned when no repository credentials are set.
var ErrNotConfigured = errors.New("repository sync is not configured")

// Result is the outcome of one file operation in a batch.
type Result struct {
	Name    string
	PostID  string
	Success bool
	Err     error
}

// Error returns the failure message, or "" on success.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// PulledPost is a post read back from the repository.
type PulledPost struct {
	Path string
	Post models.Post
	Err  error
}

// Options configure a Syncer.
type Options struct {
	Owner    string
	PostsDir string
}

// Syncer writes blog content into a Jekyll repository layout.
type Syncer struct {
	api      FileAPI
	owner    string
	postsDir string
	logger   zerolog.Logger
}

// NewSyncer returns a syncer. A nil api yields a syncer that reports itself
// unconfigured and refuses every operation.
func NewSyncer(api FileAPI, opts Options, logger zerolog.Logger) *Syncer {
	if opts.PostsDir == "" {
		opts.PostsDir = "_posts"
	}
	return &Syncer{
		api:      api,
		owner:    opts.Owner,
		postsDir: strings.Trim(opts.PostsDir, "/"),
		logger:   logger.With().Str("component", "reposync").Logger(),
	}
}

// IsConfigured reports whether the syncer has a remote to talk to.
func (s *Syncer) IsConfigured() bool {
	return s != nil && s.api != nil
}

func (s *Syncer) check() error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	return nil
}

// revision returns the sha of an existing file, or "" when it does not exist.
func (s *Syncer) revision(ctx context.Context, p string) (string, error) {
	f, err := s.api.GetFile(ctx, p)
	if errors.Is(err, ErrFileNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}
	return f.SHA, nil
}

func (s *Syncer) put(ctx context.Context, p, content, message string) error {
	sha, err := s.revision(ctx, p)
	if err != nil {
		return err
	}
	if err := s.api.PutFile(ctx, p, content, message, sha); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// SavePost creates or overwrites the post's file.
func (s *Syncer) SavePost(ctx context.Context, post models.Post) error {
	if err := s.check(); err != nil {
		return err
	}
	p, err := PostPath(s.postsDir, post)
	if err != nil {
		return err
	}
	body, err := PostFile(post)
	if err != nil {
		return err
	}

	sha, err := s.revision(ctx, p)
	if err != nil {
		return err
	}
	message := "Add new post: " + post.Title
	if sha != "" {
		message = "Update post: " + post.Title
	}
	if err := s.api.PutFile(ctx, p, body, message, sha); err != nil {
		s.logger.Error().Err(err).Str("path", p).Msg("Failed to sync post")
		return fmt.Errorf("writing %s: %w", p, err)
	}
	s.logger.Info().Str("path", p).Str("id", post.ID).Msg("Post synced")
	return nil
}

// DeletePost removes the post's file. A missing file is an error.
func (s *Syncer) DeletePost(ctx context.Context, post models.Post) error {
	if err := s.check(); err != nil {
		return err
	}
	p, err := PostPath(s.postsDir, post)
	if err != nil {
		return err
	}
	f, err := s.api.GetFile(ctx, p)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}
	if err := s.api.DeleteFile(ctx, p, "Delete post: "+post.Title, f.SHA); err != nil {
		s.logger.Error().Err(err).Str("path", p).Msg("Failed to delete remote post")
		return fmt.Errorf("deleting %s: %w", p, err)
	}
	s.logger.Info().Str("path", p).Msg("Remote post deleted")
	return nil
}

// SaveConfig writes _config.yml.
func (s *Syncer) SaveConfig(ctx context.Context, settings models.SiteSettings) error {
	if err := s.check(); err != nil {
		return err
	}
	content, err := ConfigFile(settings, s.owner)
	if err != nil {
		return err
	}
	return s.put(ctx, "_config.yml", content, "Update site configuration")
}

// SaveAboutPage writes about.md.
func (s *Syncer) SaveAboutPage(ctx context.Context, about string) error {
	if err := s.check(); err != nil {
		return err
	}
	if about == "" {
		about = models.DefaultAbout
	}
	return s.put(ctx, "about.md", AboutFile(about), "Update about page")
}

// SaveSettings writes the site configuration and the about page.
func (s *Syncer) SaveSettings(ctx context.Context, settings models.SiteSettings) []Result {
	return []Result{
		result("_config.yml", "", s.SaveConfig(ctx, settings)),
		result("about.md", "", s.SaveAboutPage(ctx, settings.About)),
	}
}

// SyncAllPosts saves every post in order. A failure is recorded and the batch
// carries on. progress, when set, is called after each post.
func (s *Syncer) SyncAllPosts(ctx context.Context, posts []models.Post, progress func(done, total int)) []Result {
	results := make([]Result, 0, len(posts))
	for i, post := range posts {
		var err error
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			err = s.SavePost(ctx, post)
		}
		results = append(results, result(post.Title, post.ID, err))
		if progress != nil {
			progress(i+1, len(posts))
		}
	}
	return results
}

// InitializeSite writes the Jekyll scaffold (Gemfile, index and layouts).
func (s *Syncer) InitializeSite(ctx context.Context) []Result {
	files, err := ScaffoldFiles()
	if err != nil {
		return []Result{result("scaffold", "", err)}
	}
	results := make([]Result, 0, len(files))
	for _, name := range files {
		var err error
		if err = s.check(); err == nil {
			var content []byte
			content, err = fs.ReadFile(scaffold, path.Join("scaffold", name))
			if err == nil {
				err = s.put(ctx, name, string(content), "Initialize "+name)
			}
		}
		results = append(results, result(name, "", err))
	}
	return results
}

// ScaffoldFiles lists the repository paths InitializeSite writes.
func ScaffoldFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(scaffold, "scaffold", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		files = append(files, strings.TrimPrefix(p, "scaffold/"))
		return nil
	})
	sort.Strings(files)
	return files, err
}

// PullPosts reads every Markdown file in the posts directory back into posts.
// Files that fail to load are reported individually.
func (s *Syncer) PullPosts(ctx context.Context) ([]PulledPost, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	paths, err := s.api.ListDir(ctx, s.postsDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.postsDir, err)
	}

	var pulled []PulledPost
	for _, p := range paths {
		ext := strings.ToLower(path.Ext(p))
		if ext != ".md" && ext != ".markdown" {
			continue
		}
		item := PulledPost{Path: p}
		f, err := s.api.GetFile(ctx, p)
		if err != nil {
			item.Err = fmt.Errorf("reading %s: %w", p, err)
		} else {
			item.Post, item.Err = ParsePostFile(p, f.Content)
		}
		if item.Err != nil {
			s.logger.Warn().Err(item.Err).Str("path", p).Msg("Skipping remote post")
		}
		pulled = append(pulled, item)
	}
	return pulled, nil
}

func result(name, id string, err error) Result {
	return Result{Name: name, PostID: id, Success: err == nil, Err: err}
}
