package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultJournalName = "journal.db"

	// EnvOutputDir fills paths.output_dir when the file leaves it empty.
	EnvOutputDir = "PHOTOSORTER_OUTPUT_DIR"
)

var (
	defaultImageExtensions   = []string{"jpg", "jpeg", "png", "heic", "dng", "gif"}
	defaultVideoExtensions   = []string{"mov", "mp4"}
	defaultSidecarExtensions = []string{"mov", "aae", "xmp"}
)

func defaultStateDir() string {
	return filepath.Join(xdg.StateHome, "photosorter")
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Media: Media{
			ImageExtensions:   append([]string(nil), defaultImageExtensions...),
			VideoExtensions:   append([]string(nil), defaultVideoExtensions...),
			SidecarExtensions: append([]string(nil), defaultSidecarExtensions...),
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
