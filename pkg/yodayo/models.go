package yodayo

// Post represents one entry of a user's posts page
type Post struct {
	UUID       string       `json:"uuid"`
	Title      string       `json:"title,omitempty"`
	CreatedAt  string       `json:"created_at"`
	PhotoMedia []PhotoMedia `json:"photo_media"`
}

// PhotoMedia is an image attached to a post
type PhotoMedia struct {
	URL string `json:"url"`
}

// MediaURLs returns the URLs of every photo attached to the post, in order
func (p Post) MediaURLs() []string {
	urls := make([]string, 0, len(p.PhotoMedia))
	for _, m := range p.PhotoMedia {
		urls = append(urls, m.URL)
	}
	return urls
}

// PageKey identifies one page of a user's posts
type PageKey struct {
	UserID string
	Limit  int
	Offset int
}
