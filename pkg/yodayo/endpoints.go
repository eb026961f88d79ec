package yodayo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the default API host
	BaseURL = "https://api.yodayo.com"

	// PostsEndpoint is the path pattern for a user's posts
	PostsEndpoint = "/v1/users/%s/posts"

	// DefaultPageSize is the number of posts requested per page
	DefaultPageSize = 500

	// DefaultImageWidth is the rendition width requested from the API
	DefaultImageWidth = 2688
)

// PageOptions are the fixed query parameters sent with every page request
type PageOptions struct {
	Width       int
	IncludeNSFW bool
}

// DefaultPageOptions returns the query options used by the web client
func DefaultPageOptions() PageOptions {
	return PageOptions{Width: DefaultImageWidth, IncludeNSFW: true}
}

// GetPostsURL constructs the URL for one page of a user's posts
func GetPostsURL(baseURL string, key PageKey, opts PageOptions) string {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(key.Offset))
	params.Set("limit", strconv.Itoa(key.Limit))
	params.Set("width", strconv.Itoa(opts.Width))
	params.Set("include_nsfw", strconv.FormatBool(opts.IncludeNSFW))

	path := fmt.Sprintf(PostsEndpoint, url.PathEscape(key.UserID))
	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), path, params.Encode())
}
