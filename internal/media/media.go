package media

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind is the coarse media type derived from a file extension.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unsupported"
	}
}

// File is a candidate path plus the attributes derived from its name.
type File struct {
	Path     string
	Dir      string
	Name     string
	BaseName string
	// Ext is lowercase and without the leading dot; empty when the name has
	// no extension.
	Ext  string
	Kind Kind
}

// Types holds the extension sets used to classify files. Extensions are
// lowercase without the leading dot.
type Types struct {
	Images   map[string]struct{}
	Videos   map[string]struct{}
	Sidecars []string
}

// DefaultTypes returns the built-in extension sets.
func DefaultTypes() Types {
	return NewTypes(
		[]string{"jpg", "jpeg", "png", "heic", "dng", "gif"},
		[]string{"mov", "mp4"},
		[]string{"mov", "aae", "xmp"},
	)
}

// NewTypes builds a Types from extension lists. Leading dots and case are
// ignored.
func NewTypes(images, videos, sidecars []string) Types {
	t := Types{
		Images: make(map[string]struct{}, len(images)),
		Videos: make(map[string]struct{}, len(videos)),
	}
	for _, ext := range images {
		t.Images[NormalizeExt(ext)] = struct{}{}
	}
	for _, ext := range videos {
		t.Videos[NormalizeExt(ext)] = struct{}{}
	}
	for _, ext := range sidecars {
		if n := NormalizeExt(ext); n != "" {
			t.Sidecars = append(t.Sidecars, n)
		}
	}
	return t
}

// KindOf returns the kind for a normalized extension.
func (t Types) KindOf(ext string) Kind {
	if _, ok := t.Images[ext]; ok {
		return KindImage
	}
	if _, ok := t.Videos[ext]; ok {
		return KindVideo
	}
	return KindUnsupported
}

// IsSidecar reports whether ext belongs to the sidecar set.
func (t Types) IsSidecar(ext string) bool {
	for _, s := range t.Sidecars {
		if s == ext {
			return true
		}
	}
	return false
}

// CarriesSidecar reports whether a primary of the given kind takes a sibling
// with extension ext along. Images carry every sidecar extension. Videos only
// carry extensions that are not media types themselves, so a clip never
// absorbs a same-named clip.
func (t Types) CarriesSidecar(primary Kind, ext string) bool {
	if !t.IsSidecar(ext) {
		return false
	}
	switch primary {
	case KindImage:
		return true
	case KindVideo:
		return t.KindOf(ext) == KindUnsupported
	default:
		return false
	}
}

// NewFile derives the File attributes for path.
func (t Types) NewFile(path string) File {
	name := filepath.Base(path)
	rawExt := filepath.Ext(name)
	// A leading-dot name such as ".jpg" has no base name; treat the whole
	// thing as the base.
	if rawExt == name {
		rawExt = ""
	}
	ext := NormalizeExt(rawExt)
	return File{
		Path:     path,
		Dir:      filepath.Dir(path),
		Name:     name,
		BaseName: strings.TrimSuffix(name, rawExt),
		Ext:      ext,
		Kind:     t.KindOf(ext),
	}
}

// NormalizeExt lowercases ext and strips surrounding whitespace and a
// leading dot.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Bucket is the year/month destination folder for a file.
type Bucket struct {
	Year  int
	Month int
}

// NewBucket validates month and returns the bucket.
func NewBucket(year, month int) (Bucket, error) {
	if month < 1 || month > 12 {
		return Bucket{}, fmt.Errorf("month %d out of range", month)
	}
	return Bucket{Year: year, Month: month}, nil
}

// YearDir renders the year as its literal decimal string.
func (b Bucket) YearDir() string {
	return strconv.Itoa(b.Year)
}

// MonthDir renders the month zero-padded to two digits.
func (b Bucket) MonthDir() string {
	return fmt.Sprintf("%02d", b.Month)
}

// RelPath returns the bucket path relative to an output root.
func (b Bucket) RelPath() string {
	return filepath.Join(b.YearDir(), b.MonthDir())
}

func (b Bucket) String() string {
	return b.YearDir() + "/" + b.MonthDir()
}
