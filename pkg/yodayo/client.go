package yodayo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"yddownloader/pkg/cache"
	"yddownloader/pkg/config"
	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/logger"
)

// Client talks to the Yodayo posts API and to the image origin
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	pageOpts   PageOptions
	pages      *cache.Cache[PageKey, []Post]
	logger     logger.Logger
}

// NewClient creates a client from the API configuration. Pages are memoized
// for cacheTTL.
func NewClient(cfg *config.APIConfig, cacheTTL time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		headers: map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept-Language": "en-US,en;q=0.9",
			"Origin":          "https://yodayo.com",
			"Referer":         "https://yodayo.com/",
		},
		baseURL: baseURL,
		pageOpts: PageOptions{
			Width:       cfg.ImageWidth,
			IncludeNSFW: cfg.IncludeNSFW,
		},
		pages:  cache.New[PageKey, []Post](cacheTTL),
		logger: log.WithField("component", "yodayo"),
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetHeader sets a custom header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// PageCache exposes the page memoization cache
func (c *Client) PageCache() *cache.Cache[PageKey, []Post] {
	return c.pages
}

// newRequest builds a request carrying the client headers
func (c *Client) newRequest(ctx context.Context, method, url, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request for %s", url),
			Err:     err,
		}
	}
	for key, value := range c.headers {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
	req.Header.Set("Accept", accept)
	return req, nil
}

// doRequest performs an HTTP request with hc and logs its outcome
func (c *Client) doRequest(hc *http.Client, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := hc.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("%s %s", req.Method, req.URL.String()),
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

// checkResponseStatus turns any status of 400 or above into a typed error
func (c *Client) checkResponseStatus(resp *http.Response, url string) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	return errs.FromStatus(resp.StatusCode, url)
}

// getJSON performs a GET request and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, "application/json")
	if err != nil {
		return err
	}

	resp, err := c.doRequest(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, url); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "failed to parse posts response",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return nil
}

// FetchPage returns one page of a user's posts. An empty slice means there
// are no posts at this offset. Identical requests within the cache window are
// served without a network call.
func (c *Client) FetchPage(ctx context.Context, userID string, limit, offset int) ([]Post, error) {
	key := PageKey{UserID: userID, Limit: limit, Offset: offset}

	posts, hit, err := c.pages.GetOrLoad(key, func() ([]Post, error) {
		url := GetPostsURL(c.baseURL, key, c.pageOpts)

		var page []Post
		if err := c.getJSON(ctx, url, &page); err != nil {
			return nil, err
		}
		if page == nil {
			page = []Post{}
		}
		return page, nil
	})
	if err != nil {
		c.logger.WithError(err).ErrorWithFields("failed to fetch posts page", map[string]interface{}{
			"user_id": userID,
			"offset":  offset,
			"limit":   limit,
		})
		return nil, err
	}

	c.logger.DebugWithFields("fetched posts page", map[string]interface{}{
		"user_id": userID,
		"offset":  offset,
		"count":   len(posts),
		"cached":  hit,
	})
	return posts, nil
}

// Probe issues a HEAD request and reports whether the resource answered with
// a status below 400. Redirects are not followed: a 3xx answer counts as
// success. Callers bound it with a context deadline.
func (c *Client) Probe(ctx context.Context, url string) error {
	req, err := c.newRequest(ctx, http.MethodHead, url, "*/*")
	if err != nil {
		return err
	}

	resp, err := c.doRequest(c.probeClient(), req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return c.checkResponseStatus(resp, url)
}

// probeClient returns a copy of the HTTP client that stops at the first
// response instead of following redirects
func (c *Client) probeClient() *http.Client {
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &hc
}

// DownloadImage fetches the raw bytes of an image
func (c *Client) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, "image/avif,image/webp,image/png,image/jpeg,*/*")
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, url); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read image body from %s", url),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	c.logger.DebugWithFields("downloaded image", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})
	return data, nil
}
