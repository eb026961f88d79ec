package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     config, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with a custom config file:
//
//     config, err := config.Load("/path/to/yddownloader.yaml", nil)
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "output":       "./archives",
//         "archive-name": "images.zip",
//         "page-size":    500,
//         "log-level":    "debug",
//     }
//     config, err := config.Load("", flags)
//
// 4. Environment variables (also read from .env and ~/.yddownloader.env):
//
//     YDDOWNLOADER_BASE_URL=https://api.yodayo.com
//     YDDOWNLOADER_PAGE_SIZE=500
//     YDDOWNLOADER_PROBE_TIMEOUT=200ms
//     YDDOWNLOADER_CACHE_TTL=53m20s
//     YDDOWNLOADER_OUTPUT_DIR=./archives
//     YDDOWNLOADER_LOG_LEVEL=debug
//
// Precedence: flags > environment > .env > config file > defaults
