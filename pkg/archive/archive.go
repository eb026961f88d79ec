// Package archive downloads a list of image URLs into a single zip archive
// held in memory.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/logger"
)

const (
	// FileName is the name the archive is offered under
	FileName = "images.zip"

	// MIMEType is the media type of the archive
	MIMEType = "application/zip"

	entryExt = ".jpg"
)

// Fetcher downloads the bytes behind a URL
type Fetcher interface {
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Progress receives archive build progress
type Progress interface {
	Start(total int)
	Advance(name string, size int)
	Finish()
}

// Entry describes one file stored in the archive
type Entry struct {
	Name string
	URL  string
	Size int
}

// Archive is a finished zip archive
type Archive struct {
	data    []byte
	entries []Entry
}

// Bytes returns the encoded zip archive
func (a *Archive) Bytes() []byte {
	return a.data
}

// Entries returns the files stored in the archive, in download order
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of files in the archive
func (a *Archive) Len() int {
	return len(a.entries)
}

// Size returns the encoded archive size in bytes
func (a *Archive) Size() int {
	return len(a.data)
}

// ContentSize returns the total size of the stored images
func (a *Archive) ContentSize() int64 {
	var total int64
	for _, e := range a.entries {
		total += int64(e.Size)
	}
	return total
}

// WriteTo writes the encoded archive to w
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.data)
	return int64(n), err
}

// Builder downloads images and packs them into an Archive
type Builder struct {
	fetcher  Fetcher
	progress Progress
	logger   logger.Logger
	now      func() time.Time
}

// NewBuilder creates a Builder that downloads through fetcher
func NewBuilder(fetcher Fetcher, log logger.Logger) *Builder {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Builder{
		fetcher: fetcher,
		logger:  log.WithField("component", "archive"),
		now:     time.Now,
	}
}

// SetProgress attaches a progress reporter. A nil reporter disables
// reporting.
func (b *Builder) SetProgress(p Progress) {
	b.progress = p
}

// Build downloads every URL in order and returns the archive. The first
// failed download aborts the build and no archive is returned.
func (b *Builder) Build(ctx context.Context, urls []string) (*Archive, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := newNamer()
	entries := make([]Entry, 0, len(urls))

	if b.progress != nil {
		b.progress.Start(len(urls))
		defer b.progress.Finish()
	}

	for i, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(err, errs.ErrorTypeNetwork, "archive build cancelled")
		}

		data, err := b.fetcher.DownloadImage(ctx, rawURL)
		if err != nil {
			b.logger.WithError(err).ErrorWithFields("image download failed", map[string]interface{}{
				"url":      rawURL,
				"position": i + 1,
				"total":    len(urls),
			})
			return nil, fmt.Errorf("download %s: %w", rawURL, err)
		}

		name := names.next(EntryName(rawURL))
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Store,
			Modified: b.now(),
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", name, err)
		}

		entries = append(entries, Entry{Name: name, URL: rawURL, Size: len(data)})
		if b.progress != nil {
			b.progress.Advance(name, len(data))
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	b.logger.InfoWithFields("archive built", map[string]interface{}{
		"entries": len(entries),
		"bytes":   buf.Len(),
	})

	return &Archive{data: buf.Bytes(), entries: entries}, nil
}

// EntryName derives the archive file name for an image URL: the last path
// segment as written (percent escapes kept), with ".jpg" appended unless it
// already ends that way.
func EntryName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.EscapedPath()
	}

	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	if !strings.HasSuffix(name, entryExt) {
		name += entryExt
	}
	return name
}

// namer hands out unique entry names, suffixing repeats with -2, -3, ...
type namer struct {
	seen map[string]int
}

func newNamer() *namer {
	return &namer{seen: make(map[string]int)}
}

func (n *namer) next(name string) string {
	count := n.seen[name]
	n.seen[name] = count + 1
	if count == 0 {
		return name
	}

	stem := strings.TrimSuffix(name, entryExt)
	for i := count + 1; ; i++ {
		candidate := stem + "-" + strconv.Itoa(i) + entryExt
		if _, taken := n.seen[candidate]; !taken {
			n.seen[candidate] = 1
			return candidate
		}
	}
}
