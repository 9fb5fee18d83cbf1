package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFromURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://github.com/octocat", "octocat", false},
		{"https://github.com/octocat/", "octocat", false},
		{"https://github.com/octocat/some-repo", "octocat", false},
		{"github.com/octocat", "octocat", false},
		{"octocat", "octocat", false},
		{"", "", true},
		{"https://github.com/", "", true},
	}

	for _, tt := range tests {
		got, err := HandleFromURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "in=%q", tt.in)
			continue
		}
		require.NoError(t, err, "in=%q", tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
	}
}

func TestFetchRepoBlob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name": "teamfinder", "description": "Hackathon matcher", "language": "Go", "topics": ["hackathon"], "stargazers_count": 12},
			{"name": "forked-thing", "fork": true, "language": "C"},
			{"name": "dotfiles", "language": "Shell"}
		]`))
	}))
	defer server.Close()

	client := NewGitHubClient(server.URL)
	blob, err := client.FetchRepoBlob(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Contains(t, blob, "GitHub account: octocat")
	assert.Contains(t, blob, "Repository: teamfinder | Language: Go | Topics: hackathon | Stars: 12 | Hackathon matcher")
	assert.Contains(t, blob, "Repository: dotfiles | Language: Shell")
	assert.NotContains(t, blob, "forked-thing")
	assert.Contains(t, blob, "Total public repositories (excluding forks): 2")
}

func TestFetchRepoBlobNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewGitHubClient(server.URL)
	_, err := client.FetchRepoBlob(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFetchRepoBlobUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer server.Close()

	client := NewGitHubClient(server.URL)
	_, err := client.FetchRepoBlob(context.Background(), "octocat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
