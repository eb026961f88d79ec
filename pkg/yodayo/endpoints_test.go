package yodayo

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPostsURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		key      PageKey
		opts     PageOptions
		expected string
	}{
		{
			name:     "first page",
			baseURL:  BaseURL,
			key:      PageKey{UserID: "abc", Limit: 500, Offset: 0},
			opts:     DefaultPageOptions(),
			expected: "https://api.yodayo.com/v1/users/abc/posts?include_nsfw=true&limit=500&offset=0&width=2688",
		},
		{
			name:     "later page",
			baseURL:  BaseURL,
			key:      PageKey{UserID: "abc", Limit: 500, Offset: 1500},
			opts:     DefaultPageOptions(),
			expected: "https://api.yodayo.com/v1/users/abc/posts?include_nsfw=true&limit=500&offset=1500&width=2688",
		},
		{
			name:     "trailing slash on base",
			baseURL:  "http://127.0.0.1:8080/",
			key:      PageKey{UserID: "u1", Limit: 10, Offset: 20},
			opts:     PageOptions{Width: 1024, IncludeNSFW: false},
			expected: "http://127.0.0.1:8080/v1/users/u1/posts?include_nsfw=false&limit=10&offset=20&width=1024",
		},
		{
			name:     "user id is path escaped",
			baseURL:  BaseURL,
			key:      PageKey{UserID: "a b/c", Limit: 500, Offset: 0},
			opts:     DefaultPageOptions(),
			expected: "https://api.yodayo.com/v1/users/a%20b%2Fc/posts?include_nsfw=true&limit=500&offset=0&width=2688",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetPostsURL(tt.baseURL, tt.key, tt.opts)
			assert.Equal(t, tt.expected, result)

			_, err := url.Parse(result)
			assert.NoError(t, err)
		})
	}
}

func TestGetPostsURLQuery(t *testing.T) {
	result := GetPostsURL(BaseURL, PageKey{UserID: "abc", Limit: 500, Offset: 500}, DefaultPageOptions())

	parsed, err := url.Parse(result)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "500", q.Get("offset"))
	assert.Equal(t, "500", q.Get("limit"))
	assert.Equal(t, "2688", q.Get("width"))
	assert.Equal(t, "true", q.Get("include_nsfw"))
	assert.Equal(t, "/v1/users/abc/posts", parsed.Path)
}

func TestPostMediaURLs(t *testing.T) {
	post := Post{
		UUID: "p1",
		PhotoMedia: []PhotoMedia{
			{URL: "https://cdn/x/a.jpg"},
			{URL: "https://cdn/x/b.png"},
		},
	}
	assert.Equal(t, []string{"https://cdn/x/a.jpg", "https://cdn/x/b.png"}, post.MediaURLs())
	assert.Empty(t, Post{UUID: "p2"}.MediaURLs())
}
