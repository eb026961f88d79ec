package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"yddownloader/pkg/config"
	"yddownloader/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Yodayo Downloader configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (YDDOWNLOADER_*), including .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'yddownloader.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source:
  - Environment variables
  - Configuration file
  - Default values`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Output and log paths`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# Yodayo Downloader Configuration File
#
# Every option can also be set with an environment variable prefixed with
# YDDOWNLOADER_, for example YDDOWNLOADER_OUTPUT_DIR or YDDOWNLOADER_LOG_LEVEL.

# Posts API
api:
  # API host
  base_url: "https://api.yodayo.com"

  # User agent sent with every request
  user_agent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

  # Posts requested per page
  page_size: 500

  # Image width requested from the API
  image_width: 2688

  # Include posts marked NSFW
  include_nsfw: true

  # Timeout of a single HTTP request
  request_timeout: 60s

# URL normalization
normalize:
  # Timeout of the HEAD probe that confirms a resolved image URL
  probe_timeout: 200ms

# Memoization of pages and resolved URLs
cache:
  ttl: 53m20s

# Output
output:
  # Directory the archive is written to
  directory: "."

  # Archive file name
  archive_name: "images.zip"

  # Replace an existing archive; when false the new one is saved as images-2.zip
  overwrite_existing: true

# Logging
logging:
  # Log level: debug, info, warn, error, disabled
  level: "info"

  # Log file path (optional, JSON lines)
  file: ""

# Terminal output
ui:
  progress_enabled: true
  color_enabled: true
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "yddownloader.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintln(ui.Output, "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(ui.Output, "  rm %s\n", configPath)
		return &exitError{code: exitFailure, err: fmt.Errorf("%s already exists", configPath)}
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create configuration directory", err.Error())
			return &exitError{code: exitFailure, err: err}
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return &exitError{code: exitFailure, err: err}
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Edit the configuration file")
	fmt.Fprintln(ui.Output, "2. Run 'yddownloader config validate' to check it")
	fmt.Fprintln(ui.Output, "3. Start downloading with 'yddownloader download'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return &exitError{code: exitFailure, err: err}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return &exitError{code: exitFailure, err: err}
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}

	fmt.Fprintln(ui.Output, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output, "1. Command line flags")
	fmt.Fprintf(ui.Output, "2. Environment variables (%s*)\n", config.EnvPrefix)
	fmt.Fprintf(ui.Output, "3. Configuration file: %s\n", source)
	fmt.Fprintln(ui.Output, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		ui.PrintError("No configuration file found", "Specify a file with --config flag")
		return &exitError{code: exitFailure, err: fmt.Errorf("no configuration file found")}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return &exitError{code: exitFailure, err: err}
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(ui.Output, "  - %s\n", p)
		}
		return &exitError{code: exitFailure, err: fmt.Errorf("invalid configuration")}
	}

	if cfg.Normalize.ProbeTimeout > cfg.API.RequestTimeout {
		ui.PrintWarning("probe_timeout is longer than request_timeout; probes are cut off by the request timeout")
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(ui.Output, "\nConfiguration summary:")
	fmt.Fprintf(ui.Output, "  API: %s (page size %d)\n", cfg.API.BaseURL, cfg.API.PageSize)
	fmt.Fprintf(ui.Output, "  Probe timeout: %s\n", cfg.Normalize.ProbeTimeout)
	fmt.Fprintf(ui.Output, "  Cache TTL: %s\n", cfg.Cache.TTL)
	fmt.Fprintf(ui.Output, "  Archive: %s\n", filepath.Join(cfg.Output.Directory, cfg.Output.ArchiveName))
	fmt.Fprintf(ui.Output, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
