// Package config loads, normalizes, and validates photosorter configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files from the XDG config directory or the working
// directory, and honours the PHOTOSORTER_OUTPUT_DIR environment fallback.
// Extension lists are normalized to lowercase without the leading dot so the
// classifier can consume them directly through Config.Types.
//
// A sort run only reads configuration; files are written solely by the
// `config init` command.
package config
