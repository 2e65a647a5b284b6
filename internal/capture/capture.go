package capture

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
)

// Status distinguishes the three ways a capture-time lookup can end.
type Status int

const (
	// StatusPresent means the container was readable and carried a capture time.
	StatusPresent Status = iota
	// StatusAbsent means the container was readable but had no usable capture time.
	StatusAbsent
	// StatusUnsupported means the file could not be opened as an image.
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusAbsent:
		return "absent"
	default:
		return "unsupported"
	}
}

// Result is the outcome of reading a capture timestamp.
type Result struct {
	Status Status
	Time   time.Time
	// Reason explains an absent or unsupported result for logging.
	Reason string
}

// Reader extracts the embedded capture timestamp from an image.
type Reader interface {
	CaptureTime(path string) (Result, error)
}

// ExifLayout is the colon-delimited DateTimeOriginal layout.
const ExifLayout = "2006:01:02 15:04:05"

// ExifReader reads DateTimeOriginal through goexif after sniffing the
// container so non-image content is reported as unsupported rather than
// "no EXIF".
type ExifReader struct{}

// NewExifReader returns the default Reader.
func NewExifReader() ExifReader { return ExifReader{} }

// CaptureTime implements Reader. Only I/O failures opening the file are
// returned as errors; every other problem becomes an Absent or Unsupported
// result.
func (ExifReader) CaptureTime(path string) (Result, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("detect container: %w", err)
	}
	if !isImage(mtype) {
		return Result{Status: StatusUnsupported, Reason: "container is " + mtype.String()}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Result{Status: StatusAbsent, Reason: "no readable exif: " + err.Error()}, nil
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		var missing exif.TagNotPresentError
		if errors.As(err, &missing) {
			return Result{Status: StatusAbsent, Reason: "DateTimeOriginal not present"}, nil
		}
		return Result{Status: StatusAbsent, Reason: err.Error()}, nil
	}
	raw, err := tag.StringVal()
	if err != nil {
		return Result{Status: StatusAbsent, Reason: "DateTimeOriginal is not text"}, nil
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return Result{Status: StatusAbsent, Reason: err.Error()}, nil
	}
	return Result{Status: StatusPresent, Time: ts}, nil
}

// ParseTimestamp parses a "YYYY:MM:DD HH:MM:SS" value. Trailing NULs and
// spaces written by some cameras are ignored.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimRight(raw, "\x00 ")
	ts, err := time.ParseInLocation(ExifLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse capture time %q: %w", value, err)
	}
	return ts, nil
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
