package reposync

import (
	"fmt"

	"inkwell/app/models"

	"gopkg.in/yaml.v3"
)

type jekyllConfig struct {
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	BaseURL        string   `yaml:"baseurl"`
	URL            string   `yaml:"url"`
	Author         string   `yaml:"author"`
	Email          string   `yaml:"email"`
	GitHubUsername string   `yaml:"github_username"`
	TwitterUser    string   `yaml:"twitter_username"`
	Markdown       string   `yaml:"markdown"`
	Highlighter    string   `yaml:"highlighter"`
	Permalink      string   `yaml:"permalink"`
	Paginate       int      `yaml:"paginate"`
	PaginatePath   string   `yaml:"paginate_path"`
	Plugins        []string `yaml:"plugins"`
	Exclude        []string `yaml:"exclude"`
}

// ConfigFile renders _config.yml for the site settings. The site URL is the
// owner's GitHub Pages domain.
func ConfigFile(settings models.SiteSettings, owner string) (string, error) {
	cfg := jekyllConfig{
		Title:          settings.Title,
		Description:    settings.Description,
		BaseURL:        "",
		URL:            fmt.Sprintf("https://%s.github.io", owner),
		Author:         settings.Author,
		Email:          settings.Email,
		GitHubUsername: settings.GitHub,
		TwitterUser:    settings.Twitter,
		Markdown:       "kramdown",
		Highlighter:    "rouge",
		Permalink:      "/:categories/:year/:month/:day/:title/",
		Paginate:       10,
		PaginatePath:   "/page:num/",
		Plugins:        []string{"jekyll-feed", "jekyll-sitemap", "jekyll-seo-tag", "jekyll-paginate"},
		Exclude:        []string{"Gemfile", "Gemfile.lock", "node_modules", "vendor/", "README.md"},
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding _config.yml: %w", err)
	}
	return "# Site settings\n" + string(data), nil
}

// AboutFile renders about.md with the about text as its body.
func AboutFile(about string) string {
	return "---\nlayout: page\ntitle: \"关于\"\npermalink: /about/\n---\n\n" + about
}
