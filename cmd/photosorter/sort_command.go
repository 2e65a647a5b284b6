package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photosorter/internal/capture"
	"photosorter/internal/classify"
	"photosorter/internal/config"
	"photosorter/internal/journal"
	"photosorter/internal/logging"
	"photosorter/internal/organizer"
	"photosorter/internal/outcome"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var pruneEmpty bool

	cmd := &cobra.Command{
		Use:   "sort <folder>...",
		Short: "Move photos and videos into YEAR/MM folders under the output root",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			outputRoot := cfg.Paths.OutputDir
			if flag := strings.TrimSpace(outputFlag); flag != "" {
				outputRoot, err = config.ExpandPath(flag)
				if err != nil {
					return fmt.Errorf("resolve output root: %w", err)
				}
			}
			prune := cfg.Organize.PruneEmptyDirs
			if cmd.Flags().Changed("prune-empty") {
				prune = pruneEmpty
			}

			runID := uuid.NewString()
			logger = logging.WithRunID(logger, runID)

			store := openRunJournal(ctx, logger)
			if store != nil {
				defer store.Close()
			}

			return runSort(cmd.Context(), sortRequest{
				cfg:        cfg,
				inputs:     args,
				outputRoot: outputRoot,
				prune:      prune,
				runID:      runID,
				logger:     logger,
				store:      store,
				out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output root (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&pruneEmpty, "prune-empty", false, "Remove folders left empty below each input")
	return cmd
}

type sortRequest struct {
	cfg        *config.Config
	inputs     []string
	outputRoot string
	prune      bool
	runID      string
	logger     *slog.Logger
	store      *journal.Store
	out        io.Writer
}

// openRunJournal opens the journal when enabled. A journal that cannot be
// opened is logged and the run proceeds without one.
func openRunJournal(ctx *commandContext, logger *slog.Logger) *journal.Store {
	store, err := ctx.openJournal()
	if err == nil {
		return store
	}
	if !errors.Is(err, errJournalDisabled) {
		logging.WarnWithContext(logger, "run journal unavailable", "journal_open",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in history"),
		)
	}
	return nil
}

func runSort(ctx context.Context, req sortRequest) error {
	types := req.cfg.Types()
	classifier := classify.New(types, capture.NewExifReader(), classify.WithLogger(req.logger))
	placer := organizer.NewPlacer(types, req.logger)

	opts := []organizer.Option{
		organizer.WithLogger(req.logger),
		organizer.WithRunID(req.runID),
		organizer.WithPruneEmpty(req.prune),
	}
	if req.store != nil {
		if err := req.store.BeginRun(ctx, req.runID, req.outputRoot, req.inputs, time.Now()); err != nil {
			logging.WarnWithContext(req.logger, "failed to record run start", "journal_begin",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in history"),
			)
			req.store = nil
		} else {
			opts = append(opts, organizer.WithRecorder(req.store))
		}
	}

	report, runErr := organizer.New(classifier, placer, opts...).Run(ctx, req.inputs, req.outputRoot)

	if req.store != nil {
		finishRun(req, report, runErr)
	}
	if report == nil {
		return runErr
	}

	colorize := shouldColorize(req.out)
	fmt.Fprint(req.out, renderSummary(report, colorize))

	if runErr != nil {
		return runErr
	}
	if failures := report.Summary().Failures; failures > 0 {
		return fmt.Errorf("%d failure(s) recorded; files involved were left in place", failures)
	}
	return nil
}

func finishRun(req sortRequest, report *outcome.Report, runErr error) {
	status := journal.StatusCompleted
	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		status = journal.StatusCanceled
	case runErr != nil:
		status = journal.StatusFailed
	}
	if report == nil {
		report = &outcome.Report{RunID: req.runID, OutputRoot: req.outputRoot}
	}
	// The command context may already be canceled; the final row still has
	// to be written.
	if err := req.store.FinishRun(context.Background(), report, status); err != nil {
		logging.WarnWithContext(req.logger, "failed to record run totals", "journal_finish",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows this run as incomplete"),
		)
	}
}
