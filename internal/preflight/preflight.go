package preflight

import (
	"context"
	"path/filepath"

	"photosorter/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the output root, every input folder and, when enabled, the
// journal location. Nothing is created or modified.
func RunAll(ctx context.Context, cfg *config.Config, outputRoot string, inputs []string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckOutputRoot(outputRoot)}
	for _, input := range inputs {
		if ctx.Err() != nil {
			break
		}
		results = append(results, CheckInputFolder(input))
	}
	if path := cfg.JournalPath(); path != "" {
		results = append(results, CheckCreatable("Journal", filepath.Dir(path)))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
