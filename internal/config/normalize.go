package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photosorter/internal/media"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMedia()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv(EnvOutputDir); ok {
			c.Paths.OutputDir = value
		}
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMedia() {
	c.Media.ImageExtensions = normalizeExtensions(c.Media.ImageExtensions)
	c.Media.VideoExtensions = normalizeExtensions(c.Media.VideoExtensions)
	c.Media.SidecarExtensions = normalizeExtensions(c.Media.SidecarExtensions)
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.StateDir, defaultJournalName)
	}
	var err error
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := media.NormalizeExt(value)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
