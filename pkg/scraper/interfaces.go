package scraper

import (
	"context"

	"yddownloader/pkg/archive"
	"yddownloader/pkg/yodayo"
)

// PostFetcher retrieves one page of a user's posts
type PostFetcher interface {
	FetchPage(ctx context.Context, userID string, limit, offset int) ([]yodayo.Post, error)
}

// URLNormalizer maps a raw media URL to the URL that should be downloaded
type URLNormalizer interface {
	Normalize(ctx context.Context, raw string) string
}

// ArchiveBuilder downloads a manifest into an archive
type ArchiveBuilder interface {
	Build(ctx context.Context, urls []string) (*archive.Archive, error)
}

// progressSetter is implemented by builders that report progress
type progressSetter interface {
	SetProgress(p archive.Progress)
}
