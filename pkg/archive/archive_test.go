package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yddownloader/pkg/config"
	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/logger"
	"yddownloader/pkg/yodayo"
)

// stubFetcher serves fixed payloads and fails for URLs listed in fail
type stubFetcher struct {
	payloads map[string][]byte
	fail     map[string]error
	calls    []string
}

func (s *stubFetcher) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	if err, ok := s.fail[url]; ok {
		return nil, err
	}
	if data, ok := s.payloads[url]; ok {
		return data, nil
	}
	return []byte("img:" + url), nil
}

// recordingProgress captures progress callbacks
type recordingProgress struct {
	total    int
	names    []string
	finished bool
}

func (r *recordingProgress) Start(total int)               { r.total = total }
func (r *recordingProgress) Advance(name string, size int) { r.names = append(r.names, name) }
func (r *recordingProgress) Finish()                       { r.finished = true }

func readZip(t *testing.T, a *Archive) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(a.Bytes()), int64(a.Size()))
	require.NoError(t, err)

	files := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = data
	}
	return files
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://cdn.example/u/a.jpg", "a.jpg"},
		{"https://cdn.example/u/img_1234.png", "img_1234.png.jpg"},
		{"https://cdn.example/u/abc", "abc.jpg"},
		{"https://cdn.example/u/a.jpg?sig=1/2", "a.jpg"},
		{"https://cdn.example/", "image.jpg"},
		{"https://cdn.example", "image.jpg"},
		{"https://cdn.example/u/a%20b.jpg", "a%20b.jpg"},
		{"https://cdn.example/u/x%2Fy.jpg", "x%2Fy.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, EntryName(tt.url))
		})
	}
}

func TestNamerDisambiguates(t *testing.T) {
	n := newNamer()
	assert.Equal(t, "a.jpg", n.next("a.jpg"))
	assert.Equal(t, "a-2.jpg", n.next("a.jpg"))
	assert.Equal(t, "a-3.jpg", n.next("a.jpg"))
	assert.Equal(t, "a-2-2.jpg", n.next("a-2.jpg"))
	assert.Equal(t, "b.jpg", n.next("b.jpg"))
}

func TestBuildTwoEntries(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string][]byte{
		"https://cdn.example/u/A.jpg": []byte("first image"),
		"https://cdn.example/u/B.jpg": []byte("second image"),
	}}
	b := NewBuilder(fetcher, logger.NewNopLogger())

	a, err := b.Build(context.Background(), []string{"https://cdn.example/u/A.jpg", "https://cdn.example/u/B.jpg"})
	require.NoError(t, err)
	require.NotNil(t, a)

	files := readZip(t, a)
	require.Len(t, files, 2)
	assert.Equal(t, []byte("first image"), files["A.jpg"])
	assert.Equal(t, []byte("second image"), files["B.jpg"])
	for _, data := range files {
		assert.NotEmpty(t, data)
	}

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, "A.jpg", a.Entries()[0].Name)
	assert.Equal(t, int64(len("first image")+len("second image")), a.ContentSize())
}

func TestBuildCollidingNamesKeepsBoth(t *testing.T) {
	fetcher := &stubFetcher{}
	b := NewBuilder(fetcher, logger.NewNopLogger())

	a, err := b.Build(context.Background(), []string{
		"https://cdn.example/one/x.jpg",
		"https://cdn.example/two/x.jpg",
	})
	require.NoError(t, err)

	files := readZip(t, a)
	assert.Contains(t, files, "x.jpg")
	assert.Contains(t, files, "x-2.jpg")
}

func TestBuildAbortsOnFailure(t *testing.T) {
	urls := []string{
		"https://cdn.example/u/1.jpg",
		"https://cdn.example/u/2.jpg",
		"https://cdn.example/u/3.jpg",
	}
	fetcher := &stubFetcher{fail: map[string]error{
		urls[1]: errs.FromStatus(http.StatusNotFound, urls[1]),
	}}
	progress := &recordingProgress{}
	log := logger.NewTestLogger()
	b := NewBuilder(fetcher, log)
	b.SetProgress(progress)

	a, err := b.Build(context.Background(), urls)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.True(t, errs.IsType(err, errs.ErrorTypeNotFound))
	assert.Equal(t, urls[:2], fetcher.calls)
	assert.Equal(t, []string{"1.jpg"}, progress.names)
	assert.True(t, progress.finished)
	assert.True(t, log.HasMessage("image download failed"))
}

func TestBuildReportsProgress(t *testing.T) {
	progress := &recordingProgress{}
	b := NewBuilder(&stubFetcher{}, logger.NewNopLogger())
	b.SetProgress(progress)

	_, err := b.Build(context.Background(), []string{"https://cdn.example/a.jpg", "https://cdn.example/b.png"})
	require.NoError(t, err)

	assert.Equal(t, 2, progress.total)
	assert.Equal(t, []string{"a.jpg", "b.png.jpg"}, progress.names)
	assert.True(t, progress.finished)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &stubFetcher{}
	a, err := NewBuilder(fetcher, logger.NewNopLogger()).Build(ctx, []string{"https://cdn.example/a.jpg"})
	require.Error(t, err)
	assert.Nil(t, a)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, fetcher.calls)
}

func TestArchiveWriteTo(t *testing.T) {
	b := NewBuilder(&stubFetcher{}, logger.NewNopLogger())
	b.now = func() time.Time { return time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC) }

	a, err := b.Build(context.Background(), []string{"https://cdn.example/a.jpg"})
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := a.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(a.Size()), n)
	assert.Equal(t, a.Bytes(), out.Bytes())
}

func TestBuildWithClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.jpg" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("bytes of " + r.URL.Path))
	}))
	defer server.Close()

	apiCfg := config.DefaultConfig().API
	apiCfg.BaseURL = server.URL
	client := yodayo.NewClient(&apiCfg, time.Hour, logger.NewNopLogger())
	b := NewBuilder(client, logger.NewNopLogger())

	a, err := b.Build(context.Background(), []string{server.URL + "/a.jpg", server.URL + "/b_w800.png"})
	require.NoError(t, err)
	files := readZip(t, a)
	assert.Equal(t, []byte("bytes of /a.jpg"), files["a.jpg"])
	assert.Equal(t, []byte("bytes of /b_w800.png"), files["b_w800.png.jpg"])

	a, err = b.Build(context.Background(), []string{server.URL + "/a.jpg", server.URL + "/broken.jpg", server.URL + "/c.jpg"})
	require.Error(t, err)
	assert.Nil(t, a)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
}
