package testsupport

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

// ExifLayout is the EXIF DateTimeOriginal layout.
const ExifLayout = "2006:01:02 15:04:05"

// JPEGWithCaptureTime returns a minimal JPEG stream whose APP1 segment holds
// a big-endian TIFF block with a single DateTimeOriginal entry. Extra bytes in
// payload make otherwise identical fixtures differ in content.
func JPEGWithCaptureTime(captured string, payload ...byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8})

	app1 := append([]byte("Exif\x00\x00"), exifTIFF(captured)...)
	buf.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(app1)+2))
	buf.Write(app1)

	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// JPEGWithoutExif returns a JPEG stream carrying only a JFIF APP0 segment.
func JPEGWithoutExif(payload ...byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10})
	buf.WriteString("JFIF\x00")
	buf.Write([]byte{0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00})
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// WriteJPEGWithCaptureTime writes a JPEG fixture whose DateTimeOriginal is ts.
func WriteJPEGWithCaptureTime(t testing.TB, path string, ts time.Time, payload ...byte) {
	t.Helper()
	WriteBytes(t, path, JPEGWithCaptureTime(ts.Format(ExifLayout), payload...))
}

// exifTIFF lays out:
//
//	0  header "MM", 42, IFD0 offset 8
//	8  IFD0: one entry, ExifIFDPointer -> 26
//	26 Exif IFD: one entry, DateTimeOriginal ASCII -> 44
//	44 NUL-terminated timestamp
func exifTIFF(captured string) []byte {
	const (
		ifd0Offset = 8
		exifOffset = ifd0Offset + 2 + 12 + 4
		dataOffset = exifOffset + 2 + 12 + 4
	)
	value := append([]byte(captured), 0x00)

	var buf bytes.Buffer
	be := binary.BigEndian
	buf.WriteString("MM")
	_ = binary.Write(&buf, be, uint16(42))
	_ = binary.Write(&buf, be, uint32(ifd0Offset))

	_ = binary.Write(&buf, be, uint16(1))
	writeIFDEntry(&buf, 0x8769, 4, 1, exifOffset)
	_ = binary.Write(&buf, be, uint32(0))

	_ = binary.Write(&buf, be, uint16(1))
	writeIFDEntry(&buf, 0x9003, 2, uint32(len(value)), dataOffset)
	_ = binary.Write(&buf, be, uint32(0))

	buf.Write(value)
	return buf.Bytes()
}

func writeIFDEntry(buf *bytes.Buffer, tag, typ uint16, count, value uint32) {
	be := binary.BigEndian
	_ = binary.Write(buf, be, tag)
	_ = binary.Write(buf, be, typ)
	_ = binary.Write(buf, be, count)
	_ = binary.Write(buf, be, value)
}
