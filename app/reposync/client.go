package reposync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ErrFileNotFound is returned by GetFile when the path does not exist.
var ErrFileNotFound = errors.New("file does not exist")

// File is a remote file with its revision marker.
type File struct {
	Path    string
	Content string
	SHA     string
}

// FileAPI is a file store with optimistic revision markers, such as the
// GitHub contents API.
type FileAPI interface {
	GetFile(ctx context.Context, path string) (*File, error)
	PutFile(ctx context.Context, path, content, message, sha string) error
	DeleteFile(ctx context.Context, path, message, sha string) error
	ListDir(ctx context.Context, dir string) ([]string, error)
}

// APIError is a non-success response from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("GitHub API Error: %d", e.StatusCode)
}

// ClientOptions configure a GitHubClient.
type ClientOptions struct {
	Token   string
	Owner   string
	Repo    string
	Branch  string
	APIBase string
	Timeout time.Duration
}

// GitHubClient implements FileAPI on the GitHub repository contents API.
type GitHubClient struct {
	http   *http.Client
	base   string
	owner  string
	repo   string
	branch string
}

// NewGitHubClient returns a client authenticating with a static token.
func NewGitHubClient(opts ClientOptions) *GitHubClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	hc := oauth2.NewClient(context.Background(), ts)
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	hc.Timeout = opts.Timeout
	if opts.APIBase == "" {
		opts.APIBase = "https://api.github.com"
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &GitHubClient{
		http:   hc,
		base:   strings.TrimRight(opts.APIBase, "/"),
		owner:  opts.Owner,
		repo:   opts.Repo,
		branch: opts.Branch,
	}
}

type contentResponse struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content,omitempty"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

// GetFile fetches and decodes path. A missing file yields ErrFileNotFound.
func (c *GitHubClient) GetFile(ctx context.Context, path string) (*File, error) {
	var resp contentResponse
	if err := c.do(ctx, http.MethodGet, c.contentsURL(path, true), nil, &resp); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &File{Path: path, Content: string(raw), SHA: resp.SHA}, nil
}

// PutFile creates path, or updates it when sha names its current revision.
func (c *GitHubClient) PutFile(ctx context.Context, path, content, message, sha string) error {
	body := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		SHA:     sha,
		Branch:  c.branch,
	}
	return c.do(ctx, http.MethodPut, c.contentsURL(path, false), body, nil)
}

// DeleteFile removes the revision sha of path.
func (c *GitHubClient) DeleteFile(ctx context.Context, path, message, sha string) error {
	body := writeRequest{Message: message, SHA: sha, Branch: c.branch}
	return c.do(ctx, http.MethodDelete, c.contentsURL(path, false), body, nil)
}

// ListDir returns the paths of the files directly under dir. A missing
// directory is empty.
func (c *GitHubClient) ListDir(ctx context.Context, dir string) ([]string, error) {
	var entries []contentResponse
	err := c.do(ctx, http.MethodGet, c.contentsURL(dir, true), nil, &entries)
	if errors.Is(err, ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type == "file" {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}

func (c *GitHubClient) contentsURL(path string, withRef bool) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.base, url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segments, "/"))
	if withRef {
		u += "?ref=" + url.QueryEscape(c.branch)
	}
	return u
}

func (c *GitHubClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return ErrFileNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
