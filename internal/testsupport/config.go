package testsupport

import (
	"path/filepath"
	"testing"

	"photosorter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory: the
// output root is <base>/sorted and the journal lives under <base>/state.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "sorted")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")

	builder := &configBuilder{cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithoutJournal disables the run journal.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// WithPruneEmpty toggles organize.prune_empty_dirs.
func WithPruneEmpty(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.PruneEmptyDirs = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithOutputDir overrides paths.output_dir; an empty dir leaves it unset.
func WithOutputDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = dir
	}
}
