package ui

import (
	"fmt"
	"io"
	"os"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔═════════════════════════════════════════════════════╗
    ║ ██╗   ██╗ ██████╗ ██████╗  █████╗ ██╗   ██╗ ██████╗ ║
    ║ ╚██╗ ██╔╝██╔═══██╗██╔══██╗██╔══██╗╚██╗ ██╔╝██╔═══██╗║
    ║  ╚████╔╝ ██║   ██║██║  ██║███████║ ╚████╔╝ ██║   ██║║
    ║   ╚██╔╝  ██║   ██║██║  ██║██╔══██║  ╚██╔╝  ██║   ██║║
    ║    ██║   ╚██████╔╝██████╔╝██║  ██║   ██║   ╚██████╔╝║
    ║    ╚═╝    ╚═════╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝    ╚═════╝ ║
    ║             IMAGE ARCHIVE DOWNLOADER                ║
    ╚═════════════════════════════════════════════════════╝
`

// Output receives all user-facing terminal output
var Output io.Writer = os.Stdout

var (
	colorEnabled = true
	quiet        = false
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// SetColor enables or disables ANSI colors
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// SetQuiet suppresses everything except errors
func SetQuiet(enabled bool) {
	quiet = enabled
}

// IsQuiet reports whether quiet mode is on
func IsQuiet() bool {
	return quiet
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quiet {
		return
	}
	fmt.Fprint(Output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red. Errors are shown even in quiet
// mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if quiet {
		return
	}
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a labelled value
func PrintInfo(label string, value string) {
	if quiet {
		return
	}
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if quiet {
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(Output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if quiet {
		return
	}
	fmt.Fprintln(Output, Magenta(msg))
}

// PrintMessage prints a user-facing notice such as a validation or empty
// result message. Notices are shown even in quiet mode.
func PrintMessage(msg string) {
	fmt.Fprintln(Output, Yellow(msg))
}
