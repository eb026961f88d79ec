package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"yddownloader/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// exitError carries the process exit code for an error that has already
// been reported to the user
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yddownloader",
	Short: "Download a Yodayo user's images for a date range as a zip archive",
	Long: `Yodayo Downloader fetches every post of a Yodayo user, keeps the ones
created within a date range and packs their images into images.zip.

Dates use the format YYYY-MM-DDTHH:MM:SSZ and both ends of the range are
inclusive. Run without arguments on a terminal to fill in the inputs
interactively.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColor(!noColor)
		ui.SetQuiet(quiet)

		if quiet && logLevel == "" {
			logLevel = "error"
		}

		if cmd.Name() == "download" {
			ui.PrintLogo()
		}
	},
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./yddownloader.yaml or $HOME/.config/yddownloader/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors and result messages")

	rootCmd.SetVersionTemplate(`Yodayo Downloader {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
