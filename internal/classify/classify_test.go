package classify_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photosorter/internal/capture"
	"photosorter/internal/classify"
	"photosorter/internal/media"
	"photosorter/internal/outcome"
	"photosorter/internal/testsupport"
)

type stubReader struct {
	result capture.Result
	err    error
	calls  int
}

func (s *stubReader) CaptureTime(string) (capture.Result, error) {
	s.calls++
	return s.result, s.err
}

func newClassifier(reader capture.Reader, opts ...classify.Option) *classify.Classifier {
	return classify.New(media.DefaultTypes(), reader, opts...)
}

func TestClassifyImageUsesCaptureTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	captured := time.Date(2014, time.September, 29, 8, 36, 47, 0, time.Local)
	testsupport.WriteJPEGWithCaptureTime(t, path, captured)
	testsupport.SetModTime(t, path, time.Date(2021, time.March, 5, 12, 0, 0, 0, time.Local))

	res, err := newClassifier(capture.NewExifReader()).Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Source != classify.SourceCapture {
		t.Fatalf("expected capture source, got %s", res.Source)
	}
	if res.Bucket.String() != "2014/09" {
		t.Fatalf("expected 2014/09, got %s", res.Bucket)
	}
	if res.File.Kind != media.KindImage {
		t.Fatalf("expected image kind, got %s", res.File.Kind)
	}
}

func TestClassifyVideoIgnoresReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.MOV")
	testsupport.WriteFile(t, path, 64)
	testsupport.SetModTime(t, path, time.Date(2021, time.March, 5, 12, 0, 0, 0, time.Local))

	reader := &stubReader{result: capture.Result{Status: capture.StatusPresent, Time: time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local)}}
	res, err := newClassifier(reader).Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if reader.calls != 0 {
		t.Fatalf("expected reader to be skipped for video, called %d times", reader.calls)
	}
	if res.Source != classify.SourceModTime || res.Bucket.String() != "2021/03" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.File.Ext != "mov" {
		t.Fatalf("expected lowercase ext, got %q", res.File.Ext)
	}
}

func TestClassifyImageFallsBackToModTime(t *testing.T) {
	mtime := time.Date(2019, time.December, 31, 23, 0, 0, 0, time.Local)
	cases := []struct {
		name   string
		reader capture.Reader
	}{
		{name: "absent", reader: &stubReader{result: capture.Result{Status: capture.StatusAbsent}}},
		{name: "unsupported", reader: &stubReader{result: capture.Result{Status: capture.StatusUnsupported}}},
		{name: "reader error", reader: &stubReader{err: errors.New("boom")}},
		{name: "no reader", reader: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "a.png")
			testsupport.WriteFile(t, path, 8)
			testsupport.SetModTime(t, path, mtime)

			res, err := newClassifier(tc.reader).Classify(path)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if res.Source != classify.SourceModTime || res.Bucket.String() != "2019/12" {
				t.Fatalf("unexpected result %+v", res)
			}
		})
	}
}

func TestClassifyCorruptJPEGFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	testsupport.WriteString(t, path, "definitely not a jpeg")
	testsupport.SetModTime(t, path, time.Date(2008, time.July, 4, 9, 0, 0, 0, time.Local))

	res, err := newClassifier(capture.NewExifReader()).Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Source != classify.SourceModTime || res.Bucket.String() != "2008/07" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClassifyUnsupported(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		file string
	}{
		{name: "no extension", file: "README"},
		{name: "unknown extension", file: "notes.txt"},
		{name: "sidecar only", file: "IMG_0001.aae"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			testsupport.WriteFile(t, path, 1)
			_, err := newClassifier(nil).Classify(path)
			if !errors.Is(err, outcome.ErrUnsupportedType) {
				t.Fatalf("expected ErrUnsupportedType, got %v", err)
			}
			if outcome.KindOf(err) != outcome.KindUnsupportedType {
				t.Fatalf("unexpected kind %s", outcome.KindOf(err))
			}
		})
	}
}

func TestClassifyDateUnresolvedWhenStatFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, path, 1)
	stat := func(string) (fs.FileInfo, error) { return nil, os.ErrPermission }

	_, err := newClassifier(nil, classify.WithStat(stat)).Classify(path)
	if !errors.Is(err, outcome.ErrDateUnresolved) {
		t.Fatalf("expected ErrDateUnresolved, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}
