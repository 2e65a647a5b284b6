package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photosorter/internal/config"
	"photosorter/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "check [folder]...",
		Short: "Check that the output root, input folders and journal are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			outputRoot := cfg.Paths.OutputDir
			if flag := strings.TrimSpace(outputFlag); flag != "" {
				if outputRoot, err = config.ExpandPath(flag); err != nil {
					return fmt.Errorf("resolve output root: %w", err)
				}
			}
			inputs := make([]string, 0, len(args))
			for _, arg := range args {
				abs, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve %q: %w", arg, err)
				}
				inputs = append(inputs, abs)
			}

			results := preflight.RunAll(cmd.Context(), cfg, outputRoot, inputs)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output root (defaults to paths.output_dir)")
	return cmd
}
