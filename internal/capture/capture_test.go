package capture_test

import (
	"path/filepath"
	"testing"
	"time"

	"photosorter/internal/capture"
	"photosorter/internal/testsupport"
)

func TestExifReaderReturnsCaptureTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_0001.jpg")
	want := time.Date(2014, time.September, 3, 10, 15, 30, 0, time.Local)
	testsupport.WriteJPEGWithCaptureTime(t, path, want)

	res, err := capture.NewExifReader().CaptureTime(path)
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if res.Status != capture.StatusPresent {
		t.Fatalf("expected present, got %s (%s)", res.Status, res.Reason)
	}
	if !res.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, res.Time)
	}
}

func TestExifReaderWithoutExifIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	testsupport.WriteBytes(t, path, testsupport.JPEGWithoutExif())

	res, err := capture.NewExifReader().CaptureTime(path)
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if res.Status != capture.StatusAbsent {
		t.Fatalf("expected absent, got %s", res.Status)
	}
}

func TestExifReaderMalformedTimestampIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jpg")
	testsupport.WriteBytes(t, path, testsupport.JPEGWithCaptureTime("not a timestamp"))

	res, err := capture.NewExifReader().CaptureTime(path)
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if res.Status != capture.StatusAbsent {
		t.Fatalf("expected absent, got %s", res.Status)
	}
}

func TestExifReaderNonImageIsUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.jpg")
	testsupport.WriteString(t, path, "this is not an image at all\n")

	res, err := capture.NewExifReader().CaptureTime(path)
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if res.Status != capture.StatusUnsupported {
		t.Fatalf("expected unsupported, got %s", res.Status)
	}
}

func TestExifReaderMissingFileErrors(t *testing.T) {
	if _, err := capture.NewExifReader().CaptureTime(filepath.Join(t.TempDir(), "gone.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "2001:02:03 04:05:06", want: time.Date(2001, 2, 3, 4, 5, 6, 0, time.Local)},
		{raw: "2001:02:03 04:05:06\x00", want: time.Date(2001, 2, 3, 4, 5, 6, 0, time.Local)},
		{raw: "2001:02:03 04:05:06  ", want: time.Date(2001, 2, 3, 4, 5, 6, 0, time.Local)},
		{raw: "0000:00:00 00:00:00", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := capture.ParseTimestamp(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
