package classify

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"photosorter/internal/capture"
	"photosorter/internal/logging"
	"photosorter/internal/media"
	"photosorter/internal/outcome"
)

// DateSource records which timestamp produced a bucket.
type DateSource int

const (
	SourceCapture DateSource = iota
	SourceModTime
)

func (s DateSource) String() string {
	if s == SourceCapture {
		return "capture"
	}
	return "mtime"
}

// Result is a classified file with its resolved bucket.
type Result struct {
	File   media.File
	Bucket media.Bucket
	Source DateSource
	Time   time.Time
}

// StatFunc matches os.Stat.
type StatFunc func(string) (fs.FileInfo, error)

// Classifier decides whether a path is supported media and which bucket it
// belongs to.
type Classifier struct {
	types  media.Types
	reader capture.Reader
	stat   StatFunc
	logger *slog.Logger
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithStat overrides the modification-time lookup.
func WithStat(fn StatFunc) Option {
	return func(c *Classifier) {
		if fn != nil {
			c.stat = fn
		}
	}
}

// WithLogger attaches a logger for fallback and skip diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "classifier")
		}
	}
}

// New constructs a Classifier. A nil reader disables capture-time lookup so
// every file uses its modification time.
func New(types media.Types, reader capture.Reader, opts ...Option) *Classifier {
	c := &Classifier{
		types:  types,
		reader: reader,
		stat:   os.Stat,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Types returns the extension sets the classifier was built with.
func (c *Classifier) Types() media.Types {
	return c.types
}

// Classify resolves path to a Result. Failures are file-local and wrap
// outcome.ErrUnsupportedType or outcome.ErrDateUnresolved.
func (c *Classifier) Classify(path string) (Result, error) {
	file := c.types.NewFile(path)
	if file.Ext == "" {
		return Result{}, outcome.Wrap(outcome.ErrUnsupportedType, path, "classify", "no extension", nil)
	}
	if file.Kind == media.KindUnsupported {
		return Result{}, outcome.Wrap(outcome.ErrUnsupportedType, path, "classify", fmt.Sprintf("extension %q not recognized", file.Ext), nil)
	}

	if file.Kind == media.KindImage {
		if ts, ok := c.captureTime(path); ok {
			return c.result(file, ts, SourceCapture)
		}
	}

	info, err := c.stat(path)
	if err != nil {
		return Result{}, outcome.Wrap(outcome.ErrDateUnresolved, path, "stat", "modification time unavailable", err)
	}
	mtime := info.ModTime()
	if mtime.IsZero() {
		return Result{}, outcome.Wrap(outcome.ErrDateUnresolved, path, "stat", "modification time unavailable", nil)
	}
	return c.result(file, mtime, SourceModTime)
}

func (c *Classifier) captureTime(path string) (time.Time, bool) {
	if c.reader == nil {
		return time.Time{}, false
	}
	res, err := c.reader.CaptureTime(path)
	if err != nil {
		c.logger.Debug("capture time unreadable; using modification time",
			logging.String("path", path),
			logging.Error(err),
		)
		return time.Time{}, false
	}
	if res.Status != capture.StatusPresent {
		c.logger.Debug("capture time missing; using modification time",
			logging.String("path", path),
			logging.String("status", res.Status.String()),
			logging.String("reason", res.Reason),
		)
		return time.Time{}, false
	}
	return res.Time, true
}

func (c *Classifier) result(file media.File, ts time.Time, source DateSource) (Result, error) {
	bucket, err := media.NewBucket(ts.Year(), int(ts.Month()))
	if err != nil {
		return Result{}, outcome.Wrap(outcome.ErrDateUnresolved, file.Path, "bucket", "", err)
	}
	return Result{File: file, Bucket: bucket, Source: source, Time: ts}, nil
}
