package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// ArchiveProgress renders archive download progress as a terminal bar
type ArchiveProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	bytes  int64
}

// NewArchiveProgress creates a progress bar writing to w. A nil writer
// defaults to stderr.
func NewArchiveProgress(w io.Writer) *ArchiveProgress {
	if w == nil {
		w = os.Stderr
	}
	return &ArchiveProgress{writer: w}
}

// Start begins a new bar for total images
func (p *ArchiveProgress) Start(total int) {
	p.bytes = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(colorEnabled),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetDescription("[cyan]Downloading images[reset]"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("img"),
		progressbar.OptionFullWidth(),
	)
}

// Advance records one stored image
func (p *ArchiveProgress) Advance(name string, size int) {
	p.bytes += int64(size)
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("[cyan]%s[reset] %s", name, FormatBytes(p.bytes)))
	_ = p.bar.Add(1)
}

// Finish clears the bar
func (p *ArchiveProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	_ = p.bar.Clear()
	fmt.Fprintln(p.writer)
}

// Summary describes a finished run
type Summary struct {
	RunID    string
	UserID   string
	Images   int
	Pages    int
	Posts    int
	Archive  int64
	Content  int64
	Path     string
	MIMEType string
	Duration time.Duration

	// Archives written to OutputDir since the program started
	SessionArchives int
	SessionBytes    int64
	OutputDir       string
}

// PrintSummary prints the outcome of a run
func PrintSummary(s Summary) {
	PrintSuccess("\n[ARCHIVE READY]")
	PrintInfo("User", s.UserID)
	PrintInfo("Pages scanned", fmt.Sprintf("%d (%s posts)", s.Pages, humanize.Comma(int64(s.Posts))))
	PrintInfo("Images", humanize.Comma(int64(s.Images)))
	PrintInfo("Image data", FormatBytes(s.Content))
	PrintInfo("Archive", fmt.Sprintf("%s (%s, %s)", s.Path, s.MIMEType, FormatBytes(s.Archive)))
	if s.SessionArchives > 1 {
		PrintInfo("This session", fmt.Sprintf("%d archives, %s in %s", s.SessionArchives, FormatBytes(s.SessionBytes), s.OutputDir))
	}
	PrintInfo("Elapsed", s.Duration.Round(time.Millisecond).String())
	PrintInfo("Run ID", s.RunID)
}

// FormatBytes renders a byte count for humans
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
