package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/ui"
	"yddownloader/pkg/yodayo"
)

// newAPIServer serves one page of posts and the images they reference
func newAPIServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		page := []yodayo.Post{}
		if r.URL.Query().Get("offset") == "0" {
			page = []yodayo.Post{
				{UUID: "p1", CreatedAt: "2024-05-27T08:00:00Z", PhotoMedia: []yodayo.PhotoMedia{
					{URL: server.URL + "/img/one.jpg"},
					{URL: server.URL + "/img/two.jpg"},
				}},
				{UUID: "p2", CreatedAt: "2023-01-01T00:00:00Z", PhotoMedia: []yodayo.PhotoMedia{
					{URL: server.URL + "/img/old.jpg"},
				}},
			}
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte("jpeg " + r.URL.Path))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// execute runs the root command with args and captures user-facing output
func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()

	var out bytes.Buffer
	prev := ui.Output
	ui.Output = &out
	t.Cleanup(func() { ui.Output = prev })

	// reset flag state shared between runs
	userID, startDate, endDate, outputDir, archiveName, baseURL = "", "", "", "", "", ""
	pageSize, dryRun, interactive, showProgress = 0, false, false, true
	configFile, logLevel, noColor, quiet = "", "", false, false

	rootCmd.SetArgs(args)
	code := Execute()
	return code, out.String()
}

func TestReportExitCodes(t *testing.T) {
	var out bytes.Buffer
	prev := ui.Output
	ui.Output = &out
	defer func() { ui.Output = prev }()

	assert.Equal(t, exitOK, report(nil))
	assert.Equal(t, exitValidation, report(errs.New(errs.ErrorTypeValidation, errs.MsgInvalidRange)))
	assert.Equal(t, exitOK, report(errs.New(errs.ErrorTypeNoResults, errs.MsgNoImagesFound)))
	assert.Equal(t, exitFailure, report(errs.FromStatus(http.StatusBadGateway, "https://api")))

	assert.Contains(t, out.String(), errs.MsgInvalidRange)
	assert.Contains(t, out.String(), errs.MsgNoImagesFound)
}

func TestFormMessage(t *testing.T) {
	r := &runner{}
	assert.Equal(t, errs.MsgNoImagesFound, formMessage(r, errs.New(errs.ErrorTypeNoResults, errs.MsgNoImagesFound)))
	assert.Equal(t, errs.MsgMissingInput, formMessage(r, errs.New(errs.ErrorTypeValidation, errs.MsgMissingInput)))
	assert.True(t, strings.HasPrefix(formMessage(r, errs.FromStatus(500, "x")), "Download failed: "))

	r.lastPath, r.lastCount = "/tmp/images.zip", 3
	assert.Equal(t, "Saved /tmp/images.zip (3 images).", formMessage(r, nil))
}

func TestDownloadWritesArchive(t *testing.T) {
	var hits int32
	server := newAPIServer(t, &hits)
	dir := t.TempDir()

	code, out := execute(t, "download",
		"--user", "abc",
		"--start", "2024-05-27T00:00:00Z",
		"--end", "2024-05-28T00:00:00Z",
		"--base-url", server.URL,
		"--output", dir,
		"--progress=false",
		"--log-level", "disabled",
		"--no-color",
	)
	require.Equal(t, exitOK, code, out)

	path := filepath.Join(dir, "images.zip")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"one.jpg", "two.jpg"}, names)
	assert.Contains(t, out, "application/zip")
}

func TestDownloadValidationMakesNoRequests(t *testing.T) {
	var hits int32
	server := newAPIServer(t, &hits)
	dir := t.TempDir()

	code, out := execute(t, "download",
		"--user", "abc",
		"--start", "2024-05-29T00:00:00Z",
		"--end", "2024-05-28T00:00:00Z",
		"--base-url", server.URL,
		"--output", dir,
		"--log-level", "disabled",
	)
	assert.Equal(t, exitValidation, code)
	assert.Contains(t, out, errs.MsgInvalidRange)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))

	_, err := os.Stat(filepath.Join(dir, "images.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadMissingInput(t *testing.T) {
	code, out := execute(t, "download", "--user", "abc", "--log-level", "disabled")
	assert.Equal(t, exitValidation, code)
	assert.Contains(t, out, errs.MsgMissingInput)
}

func TestDownloadNoResults(t *testing.T) {
	var hits int32
	server := newAPIServer(t, &hits)
	dir := t.TempDir()

	code, out := execute(t, "download",
		"--user", "abc",
		"--start", "2020-01-01T00:00:00Z",
		"--end", "2020-12-31T23:59:59Z",
		"--base-url", server.URL,
		"--output", dir,
		"--log-level", "disabled",
	)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, errs.MsgNoImagesFound)

	_, err := os.Stat(filepath.Join(dir, "images.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadDryRun(t *testing.T) {
	var hits int32
	server := newAPIServer(t, &hits)

	code, out := execute(t, "download",
		"--user", "abc",
		"--start", "2024-05-27T00:00:00Z",
		"--end", "2024-05-28T00:00:00Z",
		"--base-url", server.URL,
		"--dry-run",
		"--log-level", "disabled",
	)
	require.Equal(t, exitOK, code, out)
	assert.Contains(t, out, server.URL+"/img/one.jpg")
	assert.Contains(t, out, server.URL+"/img/two.jpg")
	assert.NotContains(t, out, "old.jpg")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "yddownloader.yaml")

	code, out := execute(t, "config", "init", "--config", path)
	require.Equal(t, exitOK, code, out)
	assert.FileExists(t, path)

	code, out = execute(t, "config", "validate", "--config", path)
	assert.Equal(t, exitOK, code, out)
	assert.Contains(t, out, "Configuration is valid")

	code, _ = execute(t, "config", "init", "--config", path)
	assert.Equal(t, exitFailure, code)
}
