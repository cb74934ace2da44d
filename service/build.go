package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"inkwell/app/markdown"
	"inkwell/app/models"
	"inkwell/app/render"
	"inkwell/app/search"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Progress reports how far a long operation has come.
type Progress interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// BarProgress draws a progress bar on Out.
type BarProgress struct {
	Out         io.Writer
	Description string
	bar         *progressbar.ProgressBar
}

func (p *BarProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.Out),
		progressbar.OptionSetDescription(p.Description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *BarProgress) Update(current int, message string) {
	if p.bar != nil {
		p.bar.Describe(message)
		_ = p.bar.Set(current)
	}
}

func (p *BarProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

type noProgress struct{}

func (noProgress) Start(int)          {}
func (noProgress) Update(int, string) {}
func (noProgress) Finish()            {}

// page is one file of the static site, relative to the output directory.
type page struct {
	path   string
	view   render.ViewKind
	params render.Params
}

// BuildReport summarizes a static build.
type BuildReport struct {
	Pages   int
	Skipped []string
}

// sitePages lists every page of the static site. Names that cannot be a
// single path segment are returned in skipped.
func sitePages(data models.BlogData, postsPerPage int) (pages []page, skipped []string) {
	pages = append(pages, page{path: "index.html", view: render.ViewHome, params: render.Params{Page: 1}})
	total := render.Paginate(data.Posts, 1, postsPerPage).TotalPages
	for n := 2; n <= total; n++ {
		pages = append(pages, page{path: filepath.Join("page", fmt.Sprint(n), "index.html"), view: render.ViewHome, params: render.Params{Page: n}})
	}

	for _, p := range data.Posts {
		if !safeSegment(p.ID) {
			skipped = append(skipped, "posts/"+p.ID)
			continue
		}
		pages = append(pages, page{path: filepath.Join("posts", p.ID, "index.html"), view: render.ViewPost, params: render.Params{ID: p.ID}})
	}

	pages = append(pages,
		page{path: filepath.Join("categories", "index.html"), view: render.ViewCategories},
		page{path: filepath.Join("tags", "index.html"), view: render.ViewTags},
		page{path: filepath.Join("about", "index.html"), view: render.ViewAbout},
		page{path: filepath.Join("friends", "index.html"), view: render.ViewFriends},
		page{path: filepath.Join("search", "index.html"), view: render.ViewSearch},
		page{path: "404.html", view: render.ViewNotFound},
	)
	for _, g := range data.Categories() {
		if !safeSegment(g.Name) {
			skipped = append(skipped, "categories/"+g.Name)
			continue
		}
		pages = append(pages, page{path: filepath.Join("categories", g.Name, "index.html"), view: render.ViewCategory, params: render.Params{Name: g.Name}})
	}
	for _, g := range data.Tags() {
		if !safeSegment(g.Name) {
			skipped = append(skipped, "tags/"+g.Name)
			continue
		}
		pages = append(pages, page{path: filepath.Join("tags", g.Name, "index.html"), view: render.ViewTag, params: render.Params{Name: g.Name}})
	}
	return pages, skipped
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// BuildSite renders every public page into outDir, along with the
// stylesheet and search.json, so the blog can be served as plain files.
func BuildSite(ctx context.Context, data models.BlogData, renderer *render.Renderer, md markdown.Renderer, outDir string, progress Progress, logger zerolog.Logger) (BuildReport, error) {
	if progress == nil {
		progress = noProgress{}
	}
	pages, skipped := sitePages(data, renderer.PostsPerPage())
	for _, s := range skipped {
		logger.Warn().Str("page", s).Msg("Skipping page whose name is not a valid path segment")
	}

	progress.Start(len(pages))
	defer progress.Finish()
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return BuildReport{}, err
		}
		html, err := renderer.Render(p.view, data, p.params)
		if err != nil {
			return BuildReport{}, fmt.Errorf("rendering %s: %w", p.path, err)
		}
		if err := writeFile(filepath.Join(outDir, p.path), []byte(html)); err != nil {
			return BuildReport{}, err
		}
		progress.Update(i+1, p.path)
	}

	index, err := json.Marshal(search.Build(data.Posts, md).Documents())
	if err != nil {
		return BuildReport{}, fmt.Errorf("encoding search index: %w", err)
	}
	if err := writeFile(filepath.Join(outDir, "search.json"), index); err != nil {
		return BuildReport{}, err
	}
	if err := copyFS(filepath.Join(outDir, "static"), render.Static()); err != nil {
		return BuildReport{}, err
	}

	logger.Info().Int("pages", len(pages)).Str("dir", outDir).Msg("Static site built")
	return BuildReport{Pages: len(pages), Skipped: skipped}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func copyFS(dir string, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(dir, filepath.FromSlash(path)), data)
	})
}
