package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"photosorter/internal/classify"
	"photosorter/internal/logging"
	"photosorter/internal/media"
	"photosorter/internal/outcome"
	"photosorter/internal/scan"
)

// Recorder receives every report entry as soon as it is produced.
type Recorder interface {
	RecordEntry(ctx context.Context, runID string, entry outcome.Entry) error
}

// Organizer drives traversal, classification and placement for a run.
type Organizer struct {
	classifier *classify.Classifier
	placer     *Placer
	logger     *slog.Logger
	recorder   Recorder
	runID      string
	pruneEmpty bool
	now        func() time.Time
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithLogger sets the logger used for run-level messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Organizer) {
		if logger != nil {
			o.logger = logging.NewComponentLogger(logger, "organizer")
		}
	}
}

// WithRecorder streams entries to r while the run progresses.
func WithRecorder(r Recorder) Option {
	return func(o *Organizer) { o.recorder = r }
}

// WithRunID tags the report and recorded entries.
func WithRunID(id string) Option {
	return func(o *Organizer) { o.runID = strings.TrimSpace(id) }
}

// WithPruneEmpty removes directories emptied by the run below each input.
func WithPruneEmpty(enabled bool) Option {
	return func(o *Organizer) { o.pruneEmpty = enabled }
}

// New constructs an Organizer.
func New(classifier *classify.Classifier, placer *Placer, opts ...Option) *Organizer {
	o := &Organizer{
		classifier: classifier,
		placer:     placer,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run sorts every file below inputs into outputRoot. Only a missing output
// root, an unusable output root, a held lock or context cancellation abort
// the run; every other problem becomes a report entry. The returned report is
// non-nil whenever traversal started, including on cancellation.
func (o *Organizer) Run(ctx context.Context, inputs []string, outputRoot string) (*outcome.Report, error) {
	if strings.TrimSpace(outputRoot) == "" {
		return nil, outcome.Wrap(outcome.ErrNoOutputRoot, "", "run", "set --output or paths.output_dir", nil)
	}
	root, err := filepath.Abs(strings.TrimSpace(outputRoot))
	if err != nil {
		return nil, outcome.Wrap(outcome.ErrNoOutputRoot, outputRoot, "resolve output root", "", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, outcome.Wrap(outcome.ErrDestinationCreate, root, "create output root", "", err)
	}

	lock, err := acquireLock(root)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	if err := unix.Access(root, unix.W_OK|unix.X_OK); err != nil {
		logging.WarnWithContext(o.logger, "output root may not be writable", "output_root_access",
			logging.String("output_root", root),
			logging.Error(err),
			logging.String(logging.FieldImpact, "placements are likely to fail"),
		)
	}

	report := &outcome.Report{
		RunID:      o.runID,
		OutputRoot: root,
		StartedAt:  o.now().UTC(),
	}
	o.logger.Info("sort started",
		logging.String("output_root", root),
		logging.Int("inputs", len(inputs)),
	)

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = o.now().UTC()
			return report, err
		}
		folder, err := filepath.Abs(input)
		if err != nil {
			o.addEntry(ctx, report, outcome.Entry{
				Kind:   outcome.KindFolderUnreadable,
				Source: input,
				Reason: err.Error(),
			})
			continue
		}
		report.Inputs = append(report.Inputs, folder)
		if err := o.sortFolder(ctx, report, folder, root); err != nil {
			report.FinishedAt = o.now().UTC()
			return report, err
		}
	}

	report.FinishedAt = o.now().UTC()
	summary := report.Summary()
	o.logger.Info("sort finished",
		logging.Int("placed", summary.Counts[outcome.KindPlaced]),
		logging.Int("duplicates", summary.Counts[outcome.KindDuplicateSkipped]),
		logging.Int("failures", summary.Failures),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (o *Organizer) sortFolder(ctx context.Context, report *outcome.Report, folder, outputRoot string) error {
	logger := o.logger.With(logging.String("folder", folder))
	logger.Info("scanning folder")

	state := newFolderState()
	yielded := 0
	rootUnreadable := false
	for path, err := range scan.Walk(folder, scan.WithExclude(outputRoot)) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			dir := folder
			var readErr *scan.ReadError
			if errors.As(err, &readErr) {
				dir = readErr.Dir
			}
			if dir == folder {
				rootUnreadable = true
			}
			logging.WarnWithContext(logger, "folder unreadable", string(outcome.KindFolderUnreadable),
				logging.String("dir", dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "files below this folder were not sorted"),
			)
			o.addEntry(ctx, report, outcome.Entry{
				Kind:   outcome.KindFolderUnreadable,
				Source: dir,
				Reason: outcome.Wrap(outcome.ErrFolderUnreadable, dir, "list", "", errors.Unwrap(err)).Error(),
			})
			continue
		}
		yielded++
		o.sortFile(ctx, report, state, path, outputRoot)
	}
	o.reportDeferred(ctx, report, state)

	if !rootUnreadable && yielded == 0 {
		logger.Warn("no files found", logging.String(logging.FieldEventType, string(outcome.KindNoFilesFound)))
		o.addEntry(ctx, report, outcome.Entry{
			Kind:   outcome.KindNoFilesFound,
			Source: folder,
			Reason: outcome.Wrap(outcome.ErrNoFilesFound, folder, "scan", "folder has no visible files", nil).Error(),
		})
	}

	if o.pruneEmpty && !rootUnreadable {
		for _, dir := range pruneEmptyDirs(folder, outputRoot) {
			logger.Debug("removed empty folder", logging.String("dir", dir))
		}
	}
	return nil
}

// folderState tracks sidecars across one input folder. A sidecar is reported
// either inside its primary's entry or, when no primary took it, once the
// folder has been walked.
type folderState struct {
	handled  map[string]struct{}
	deferred []deferredSidecar
}

type deferredSidecar struct {
	path    string
	primary string
}

func newFolderState() *folderState {
	return &folderState{handled: make(map[string]struct{})}
}

func (s *folderState) markHandled(entries []outcome.SidecarEntry) {
	for _, entry := range entries {
		s.handled[entry.Source] = struct{}{}
	}
}

func (s *folderState) isHandled(path string) bool {
	_, ok := s.handled[path]
	return ok
}

func (o *Organizer) sortFile(ctx context.Context, report *outcome.Report, state *folderState, path, outputRoot string) {
	if state.isHandled(path) {
		return
	}
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		o.logger.Debug("file no longer present; skipping", logging.String("path", path))
		return
	}

	types := o.classifier.Types()
	file := types.NewFile(path)
	if types.IsSidecar(file.Ext) {
		if primary := primarySibling(types, file); primary != "" {
			o.logger.Debug("deferring sidecar to its primary",
				logging.String("path", path),
				logging.String("primary", primary),
			)
			state.deferred = append(state.deferred, deferredSidecar{path: path, primary: primary})
			return
		}
	}

	classified, err := o.classifier.Classify(path)
	if err != nil {
		o.recordFailure(ctx, report, path, err)
		return
	}

	decision, err := o.placer.Place(ctx, classified.File, classified.Bucket, outputRoot)
	if err != nil {
		o.recordFailure(ctx, report, path, err)
		return
	}
	state.markHandled(decision.Sidecars)
	if decision.Duplicate {
		o.addEntry(ctx, report, outcome.Entry{
			Kind:        outcome.KindDuplicateSkipped,
			Source:      path,
			Destination: decision.DestinationPath,
			Reason:      "already exists, skipped",
		})
		for _, sidecar := range decision.Sidecars {
			o.addEntry(ctx, report, outcome.Entry{
				Kind:        outcome.KindDuplicateSkipped,
				Source:      sidecar.Source,
				Destination: sidecar.Destination,
				Reason:      "already exists, skipped",
			})
		}
		return
	}
	o.addEntry(ctx, report, outcome.Entry{
		Kind:        outcome.KindPlaced,
		Source:      path,
		Destination: decision.DestinationPath,
		Reason:      fmt.Sprintf("dated by %s", classified.Source),
		Bytes:       decision.Bytes,
		Sidecars:    decision.Sidecars,
	})
}

// reportDeferred emits SidecarDeferred for sidecars whose primary left them
// behind, for example because the primary failed or was a duplicate with a
// differing sidecar.
func (o *Organizer) reportDeferred(ctx context.Context, report *outcome.Report, state *folderState) {
	for _, d := range state.deferred {
		if state.isHandled(d.path) {
			continue
		}
		if _, err := os.Lstat(d.path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		o.addEntry(ctx, report, outcome.Entry{
			Kind:   outcome.KindSidecarDeferred,
			Source: d.path,
			Reason: "travels with " + filepath.Base(d.primary),
		})
	}
}

func (o *Organizer) recordFailure(ctx context.Context, report *outcome.Report, path string, err error) {
	kind := outcome.KindOf(err)
	if kind == outcome.KindUnsupportedType {
		o.logger.Debug("skipping unsupported file", logging.String("path", path), logging.Error(err))
	} else {
		logging.WarnWithContext(o.logger, "file not sorted", string(kind),
			logging.String("path", path),
			logging.Error(err),
		)
	}
	o.addEntry(ctx, report, outcome.Entry{Kind: kind, Source: path, Reason: err.Error()})
}

func (o *Organizer) addEntry(ctx context.Context, report *outcome.Report, entry outcome.Entry) {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = o.now().UTC()
	}
	report.Add(entry)
	if o.recorder == nil {
		return
	}
	if err := o.recorder.RecordEntry(ctx, o.runID, entry); err != nil {
		o.logger.Warn("journal write failed",
			logging.String("path", entry.Source),
			logging.Error(err),
			logging.String(logging.FieldEventType, "journal_write_failed"),
			logging.String(logging.FieldImpact, "run history will be incomplete"),
		)
	}
}

// primarySibling returns the path of a file in the same folder that would
// carry file as a sidecar, or "" when there is none. Images win over videos.
func primarySibling(types media.Types, file media.File) string {
	entries, err := os.ReadDir(file.Dir)
	if err != nil {
		return ""
	}
	var video string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == file.Name || strings.HasPrefix(name, ".") {
			continue
		}
		sibling := types.NewFile(filepath.Join(file.Dir, name))
		if sibling.BaseName != file.BaseName || !types.CarriesSidecar(sibling.Kind, file.Ext) {
			continue
		}
		if sibling.Kind == media.KindImage {
			return sibling.Path
		}
		if video == "" {
			video = sibling.Path
		}
	}
	return video
}
