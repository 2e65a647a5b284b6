package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMedia() error {
	if len(c.Media.ImageExtensions) == 0 && len(c.Media.VideoExtensions) == 0 {
		return errors.New("media: at least one image or video extension is required")
	}
	for _, ext := range c.Media.VideoExtensions {
		if slices.Contains(c.Media.ImageExtensions, ext) {
			return fmt.Errorf("media: extension %q cannot be both an image and a video", ext)
		}
	}
	for _, ext := range c.Media.SidecarExtensions {
		if slices.Contains(c.Media.ImageExtensions, ext) {
			return fmt.Errorf("media.sidecar_extensions: %q is already an image extension", ext)
		}
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path must be set when the journal is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
