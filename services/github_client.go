package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
)

const defaultGitHubAPIBase = "https://api.github.com"

// GitHubClient fetches a user's public repositories and flattens them into
// the text blob the extraction engine consumes. Pure data gathering; no
// auth, public endpoints only.
type GitHubClient struct {
	BaseURL string
	Client  *http.Client
}

func NewGitHubClient(baseURL string) *GitHubClient {
	if baseURL == "" {
		baseURL = defaultGitHubAPIBase
	}
	return &GitHubClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  utils.HTTPClient,
	}
}

type githubRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Fork        bool     `json:"fork"`
	Stars       int      `json:"stargazers_count"`
}

// HandleFromURL pulls the account name out of a github.com profile URL. A
// bare handle passes through unchanged.
func HandleFromURL(githubURL string) (string, error) {
	raw := strings.TrimSpace(githubURL)
	if raw == "" {
		return "", fmt.Errorf("github url is empty")
	}

	if !strings.Contains(raw, "/") && !strings.Contains(raw, ".") {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid github url: %w", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", fmt.Errorf("github url has no account name")
	}
	return segments[0], nil
}

// FetchRepoBlob lists the handle's repositories, newest activity first, and
// renders them as one plain-text block.
func (c *GitHubClient) FetchRepoBlob(ctx context.Context, handle string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=100&sort=updated", c.BaseURL, url.PathEscape(handle))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("github account %q not found", handle)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("GitHub /users/%s/repos returned %d: %s", handle, resp.StatusCode, utils.TruncateForLog(string(body), 200))
		return "", fmt.Errorf("github returned status %d", resp.StatusCode)
	}

	var repos []githubRepo
	if err := json.Unmarshal(body, &repos); err != nil {
		return "", fmt.Errorf("failed to parse github response: %w", err)
	}

	return flattenRepos(handle, repos), nil
}

// flattenRepos renders repo metadata as one line per repository. Forks are
// skipped: they describe other people's work.
func flattenRepos(handle string, repos []githubRepo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GitHub account: %s\n", handle)

	count := 0
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		count++
		fmt.Fprintf(&b, "Repository: %s", repo.Name)
		if repo.Language != "" {
			fmt.Fprintf(&b, " | Language: %s", repo.Language)
		}
		if len(repo.Topics) > 0 {
			fmt.Fprintf(&b, " | Topics: %s", strings.Join(repo.Topics, ", "))
		}
		if repo.Stars > 0 {
			fmt.Fprintf(&b, " | Stars: %d", repo.Stars)
		}
		if repo.Description != "" {
			fmt.Fprintf(&b, " | %s", repo.Description)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total public repositories (excluding forks): %d\n", count)
	return b.String()
}
