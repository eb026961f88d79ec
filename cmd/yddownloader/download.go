package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"yddownloader/pkg/archive"
	"yddownloader/pkg/config"
	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/logger"
	"yddownloader/pkg/scraper"
	"yddownloader/pkg/storage"
	"yddownloader/pkg/ui"
	"yddownloader/pkg/ui/tui"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

var (
	// Download command flags
	userID       string
	startDate    string
	endDate      string
	outputDir    string
	archiveName  string
	baseURL      string
	pageSize     int
	dryRun       bool
	interactive  bool
	showProgress bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a user's images for a date range into a zip archive",
	Long: `Download every image posted by a Yodayo user between two dates.

All posts of the user are scanned page by page. Posts created within the
inclusive date range are kept, their image URLs are resolved to the full
size variant and the images are written into a single zip archive.

When started on a terminal without all three inputs, or with --interactive,
a form asks for them. After each download the form is shown again so further
ranges can be fetched; pages and URLs seen in the last hour are reused.`,
	Example: `  # Download one day of images
  yddownloader download --user 5f0c... --start 2024-05-27T00:00:00Z --end 2024-05-28T00:00:00Z

  # Write the archive somewhere else under another name
  yddownloader download --user 5f0c... --start 2024-05-01T00:00:00Z --end 2024-05-31T23:59:59Z \
    --output ./archives --archive-name may.zip

  # List the image URLs that would be downloaded
  yddownloader download --user 5f0c... --start 2024-05-27T00:00:00Z --end 2024-05-28T00:00:00Z --dry-run

  # Fill in the inputs in a form
  yddownloader download --interactive`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&userID, "user", "u", "", "Yodayo user id")
	downloadCmd.Flags().StringVarP(&startDate, "start", "s", "", "start of the date range (YYYY-MM-DDTHH:MM:SSZ, inclusive)")
	downloadCmd.Flags().StringVarP(&endDate, "end", "e", "", "end of the date range (YYYY-MM-DDTHH:MM:SSZ, inclusive)")
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory the archive is written to (default: current directory)")
	downloadCmd.Flags().StringVar(&archiveName, "archive-name", "", "archive file name (default: images.zip)")
	downloadCmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	downloadCmd.Flags().IntVar(&pageSize, "page-size", 0, "posts requested per page (default: 500)")
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the image URLs without downloading them")
	downloadCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for the inputs in a form")
	downloadCmd.Flags().BoolVar(&showProgress, "progress", true, "show a progress bar while downloading")
}

// downloadFlags builds the configuration overrides from command line flags
func downloadFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if archiveName != "" {
		flags["archive-name"] = archiveName
	}
	if baseURL != "" {
		flags["base-url"] = baseURL
	}
	if pageSize > 0 {
		flags["page-size"] = pageSize
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if cmd.Flags().Changed("progress") {
		flags["progress"] = showProgress
	}
	if noColor {
		flags["color"] = false
	}
	return flags
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, downloadFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return &exitError{code: exitFailure, err: err}
	}
	ui.SetColor(cfg.UI.ColorEnabled && !noColor)

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return &exitError{code: exitFailure, err: err}
	}
	logger.WithField("version", version).Debug("Yodayo Downloader starting")

	r, err := newRunner(cfg, dryRun)
	if err != nil {
		ui.PrintError("Failed to initialize downloader", err.Error())
		return &exitError{code: exitFailure, err: err}
	}
	if cfg.UI.ProgressEnabled && !ui.IsQuiet() {
		r.setProgress(ui.NewArchiveProgress(os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req := scraper.Request{UserID: userID, Start: startDate, End: endDate}

	if shouldPrompt(req) {
		return runInteractive(ctx, r, req)
	}

	if code := report(r.run(ctx, req)); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

// shouldPrompt reports whether the inputs should be collected with the form
func shouldPrompt(req scraper.Request) bool {
	if interactive {
		return true
	}
	missing := strings.TrimSpace(req.UserID) == "" ||
		strings.TrimSpace(req.Start) == "" ||
		strings.TrimSpace(req.End) == ""
	return missing && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runInteractive shows the form until the user leaves it. The same runner
// serves every submission, so cached pages and URLs carry over.
func runInteractive(ctx context.Context, r *runner, req scraper.Request) error {
	form := tui.NewForm(nil, nil)

	values := tui.DefaultValues()
	if req.UserID != "" {
		values.UserID = req.UserID
	}
	if req.Start != "" {
		values.Start = req.Start
	}
	if req.End != "" {
		values.End = req.End
	}

	message := ""
	for {
		submitted, ok, err := form.Run(values, message)
		if err != nil {
			ui.PrintError("Form failed", err.Error())
			return &exitError{code: exitFailure, err: err}
		}
		if !ok {
			return nil
		}
		values = submitted

		err = r.run(ctx, scraper.Request{UserID: values.UserID, Start: values.Start, End: values.End})
		report(err)
		message = formMessage(r, err)

		if ctx.Err() != nil {
			return &exitError{code: exitFailure, err: ctx.Err()}
		}
	}
}

// formMessage is the line shown under the form after a run
func formMessage(r *runner, err error) string {
	switch {
	case err == nil && r.lastPath != "":
		return fmt.Sprintf("Saved %s (%d images).", r.lastPath, r.lastCount)
	case err == nil:
		return fmt.Sprintf("Found %d images.", r.lastCount)
	case errs.IsUserFacing(err):
		return err.Error()
	default:
		return "Download failed: " + err.Error()
	}
}

// report prints the outcome of a run and returns its exit code
func report(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errs.IsType(err, errs.ErrorTypeValidation):
		ui.PrintMessage(err.Error())
		return exitValidation
	case errs.IsType(err, errs.ErrorTypeNoResults):
		ui.PrintMessage(err.Error())
		return exitOK
	default:
		logger.WithError(err).Error("Download failed")
		ui.PrintError("DOWNLOAD FAILED", err.Error())
		return exitFailure
	}
}

// runner executes runs against one scraper and output directory
type runner struct {
	scraper *scraper.Scraper
	store   *storage.Manager
	cfg     *config.Config
	dryRun  bool

	lastPath  string
	lastCount int
}

func newRunner(cfg *config.Config, dryRun bool) (*runner, error) {
	s, err := scraper.New(cfg)
	if err != nil {
		return nil, err
	}

	r := &runner{scraper: s, cfg: cfg, dryRun: dryRun}
	if !dryRun {
		store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.OverwriteExisting)
		if err != nil {
			return nil, err
		}
		r.store = store
	}
	return r, nil
}

func (r *runner) setProgress(p archive.Progress) {
	r.scraper.SetProgress(p)
}

// run performs one download, or one listing in dry-run mode
func (r *runner) run(ctx context.Context, req scraper.Request) error {
	r.lastPath, r.lastCount = "", 0

	if r.dryRun {
		return r.list(ctx, req)
	}

	ui.PrintInfo("Target user", req.UserID)
	ui.PrintHighlight("[SCANNING POSTS]")

	result, err := r.scraper.Run(ctx, req)
	if err != nil {
		return err
	}

	path, err := r.store.Save(r.cfg.Output.ArchiveName, result.Archive)
	if err != nil {
		return errs.Wrap(err, errs.ErrorTypeUnknown, "failed to save archive")
	}

	r.lastPath, r.lastCount = path, result.Archive.Len()
	logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"path":   path,
		"images": result.Archive.Len(),
	}).Info("Archive saved")

	ui.PrintSummary(ui.Summary{
		RunID:    result.RunID,
		UserID:   strings.TrimSpace(req.UserID),
		Images:   result.Archive.Len(),
		Pages:    result.Manifest.PagesFetched,
		Posts:    result.Manifest.PostsScanned,
		Archive:  int64(result.Archive.Size()),
		Content:  result.Archive.ContentSize(),
		Path:     path,
		MIMEType: archive.MIMEType,
		Duration: result.Duration,

		SessionArchives: r.store.GetSavedCount(),
		SessionBytes:    r.store.GetSavedBytes(),
		OutputDir:       r.store.GetOutputDir(),
	})
	return nil
}

// list prints the manifest without downloading anything
func (r *runner) list(ctx context.Context, req scraper.Request) error {
	user, dateRange, err := req.Validate()
	if err != nil {
		return err
	}

	manifest, err := r.scraper.CollectManifest(ctx, user, dateRange)
	if err != nil {
		return err
	}
	if len(manifest.URLs) == 0 {
		return errs.New(errs.ErrorTypeNoResults, errs.MsgNoImagesFound)
	}

	for _, u := range manifest.URLs {
		fmt.Fprintln(ui.Output, u)
	}
	r.lastCount = len(manifest.URLs)
	ui.PrintInfo("Images", fmt.Sprintf("%d from %d posts in %d pages", len(manifest.URLs), manifest.PostsMatched, manifest.PagesFetched))
	return nil
}
