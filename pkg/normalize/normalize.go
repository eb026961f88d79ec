// Package normalize turns raw media URLs into directly fetchable image URLs.
//
// A media URL usually carries a size or variant suffix after its last
// underscore, for example ".../img_1234_w800.png". The normalizer strips that
// suffix, fixes up the extension and confirms the guess with a short HEAD
// probe. When the probe fails the original URL is used unchanged.
package normalize

import (
	"context"
	"strings"
	"time"

	"yddownloader/pkg/cache"
	"yddownloader/pkg/logger"
)

// DefaultProbeTimeout bounds each existence probe
const DefaultProbeTimeout = 200 * time.Millisecond

// Prober checks that a URL resolves to a fetchable resource
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// Candidate derives the canonical URL guess for raw without touching the
// network.
func Candidate(raw string) string {
	candidate := raw

	if i := strings.LastIndex(raw, "_"); i >= 0 {
		candidate = raw[:i]
		if strings.Contains(raw, ".png") {
			candidate += ".png"
		}
	}

	if !strings.HasSuffix(candidate, ".jpg") && !strings.HasSuffix(candidate, ".png") {
		if strings.Contains(raw, ".jpg") {
			candidate += ".jpg"
		} else {
			candidate += ".png"
		}
	}

	return candidate
}

// Normalizer resolves raw media URLs, memoizing each result
type Normalizer struct {
	prober  Prober
	timeout time.Duration
	results *cache.Cache[string, string]
	logger  logger.Logger
}

// New creates a Normalizer. Results are kept for ttl.
func New(prober Prober, timeout, ttl time.Duration, log logger.Logger) *Normalizer {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Normalizer{
		prober:  prober,
		timeout: timeout,
		results: cache.New[string, string](ttl),
		logger:  log.WithField("component", "normalize"),
	}
}

// Cache exposes the result cache
func (n *Normalizer) Cache() *cache.Cache[string, string] {
	return n.results
}

// Normalize returns the probed candidate for raw, or raw itself if the
// candidate could not be confirmed.
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	if result, ok := n.results.Get(raw); ok {
		return result
	}

	result := n.resolve(ctx, raw)
	n.results.Set(raw, result)
	return result
}

func (n *Normalizer) resolve(ctx context.Context, raw string) string {
	candidate := Candidate(raw)

	probeCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.prober.Probe(probeCtx, candidate); err != nil {
		n.logger.WithError(err).DebugWithFields("probe failed, keeping original URL", map[string]interface{}{
			"url":       raw,
			"candidate": candidate,
		})
		return raw
	}

	if candidate != raw {
		n.logger.DebugWithFields("normalized URL", map[string]interface{}{
			"url":       raw,
			"candidate": candidate,
		})
	}
	return candidate
}
