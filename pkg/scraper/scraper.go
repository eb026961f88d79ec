package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"yddownloader/pkg/archive"
	"yddownloader/pkg/config"
	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/filter"
	"yddownloader/pkg/logger"
	"yddownloader/pkg/normalize"
	"yddownloader/pkg/yodayo"
)

// Request holds the three user inputs of a run
type Request struct {
	UserID string
	Start  string
	End    string
}

// Manifest is the ordered list of URLs selected by one scan
type Manifest struct {
	URLs         []string
	PagesFetched int
	PostsScanned int
	PostsMatched int
}

// Result is the outcome of a successful run
type Result struct {
	RunID    string
	Archive  *archive.Archive
	Manifest *Manifest
	Duration time.Duration
}

// Scraper orchestrates the fetch, filter, normalize and archive pipeline
type Scraper struct {
	fetcher    PostFetcher
	normalizer URLNormalizer
	builder    ArchiveBuilder
	pageSize   int
	logger     logger.Logger
}

// New creates a Scraper wired to the Yodayo API
func New(cfg *config.Config) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.GetLogger()

	client := yodayo.NewClient(&cfg.API, cfg.Cache.TTL, log)
	normalizer := normalize.New(client, cfg.Normalize.ProbeTimeout, cfg.Cache.TTL, log)
	builder := archive.NewBuilder(client, log)

	logger.LogComponentStart(log, "scraper", map[string]interface{}{
		"base_url":      cfg.API.BaseURL,
		"page_size":     cfg.API.PageSize,
		"probe_timeout": cfg.Normalize.ProbeTimeout,
		"cache_ttl":     cfg.Cache.TTL,
	})

	return NewWithComponents(client, normalizer, builder, cfg.API.PageSize, log), nil
}

// NewWithComponents creates a Scraper from explicit components
func NewWithComponents(fetcher PostFetcher, normalizer URLNormalizer, builder ArchiveBuilder, pageSize int, log logger.Logger) *Scraper {
	if pageSize <= 0 {
		pageSize = yodayo.DefaultPageSize
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		fetcher:    fetcher,
		normalizer: normalizer,
		builder:    builder,
		pageSize:   pageSize,
		logger:     log.WithField("component", "scraper"),
	}
}

// SetProgress attaches a progress reporter to the archive builder, if it
// supports one
func (s *Scraper) SetProgress(p archive.Progress) {
	if ps, ok := s.builder.(progressSetter); ok {
		ps.SetProgress(p)
	}
}

// Validate checks the request inputs without touching the network
func (r Request) Validate() (string, filter.DateRange, error) {
	userID := strings.TrimSpace(r.UserID)
	if userID == "" {
		return "", filter.DateRange{}, errs.New(errs.ErrorTypeValidation, errs.MsgMissingInput)
	}

	dateRange, err := filter.ParseRange(r.Start, r.End)
	if err != nil {
		return "", filter.DateRange{}, err
	}
	return userID, dateRange, nil
}

// Run scans every page of the user's posts, keeps those inside the date
// range and returns the archive of their images. Invalid input and an empty
// selection are reported as validation and no_results errors.
func (s *Scraper) Run(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	userID, dateRange, err := req.Validate()
	if err != nil {
		log.WithError(err).Warn("Rejected run request")
		return nil, err
	}

	started := time.Now()
	log.InfoWithFields("Starting run", map[string]interface{}{
		"user_id": userID,
		"range":   dateRange.String(),
	})

	manifest, err := s.collect(ctx, log, userID, dateRange)
	if err != nil {
		return nil, err
	}

	if len(manifest.URLs) == 0 {
		log.InfoWithFields("No images matched", map[string]interface{}{
			"user_id": userID,
			"pages":   manifest.PagesFetched,
			"posts":   manifest.PostsScanned,
		})
		return nil, errs.New(errs.ErrorTypeNoResults, errs.MsgNoImagesFound)
	}

	result, err := s.builder.Build(ctx, manifest.URLs)
	if err != nil {
		log.WithError(err).Error("Archive build failed")
		return nil, err
	}

	duration := time.Since(started)
	log.InfoWithFields("Run complete", map[string]interface{}{
		"user_id":  userID,
		"images":   result.Len(),
		"bytes":    result.Size(),
		"duration": duration,
	})

	return &Result{
		RunID:    runID,
		Archive:  result,
		Manifest: manifest,
		Duration: duration,
	}, nil
}

// CollectManifest scans the user's posts and returns the normalized URLs of
// every image in range, without downloading anything
func (s *Scraper) CollectManifest(ctx context.Context, userID string, dateRange filter.DateRange) (*Manifest, error) {
	return s.collect(ctx, s.logger, userID, dateRange)
}

func (s *Scraper) collect(ctx context.Context, log logger.Logger, userID string, dateRange filter.DateRange) (*Manifest, error) {
	manifest := &Manifest{URLs: []string{}}

	for offset := 0; ; offset += s.pageSize {
		posts, err := s.fetcher.FetchPage(ctx, userID, s.pageSize, offset)
		if err != nil {
			return nil, err
		}
		manifest.PagesFetched++

		if len(posts) == 0 {
			break
		}

		matched, err := filter.ByDate(posts, dateRange)
		if err != nil {
			log.WithError(err).ErrorWithFields("Failed to filter page", map[string]interface{}{
				"user_id": userID,
				"offset":  offset,
			})
			return nil, err
		}

		for _, post := range matched {
			for _, raw := range post.MediaURLs() {
				manifest.URLs = append(manifest.URLs, s.normalizer.Normalize(ctx, raw))
			}
		}

		manifest.PostsScanned += len(posts)
		manifest.PostsMatched += len(matched)
		logger.LogPage(log, userID, offset, len(posts), len(matched))
	}

	return manifest, nil
}
