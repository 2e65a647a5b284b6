// Package capture reads the embedded capture timestamp of an image.
//
// The Reader interface keeps classification independent of the metadata
// library. ExifReader sniffs the container with mimetype and then decodes
// DateTimeOriginal with goexif.
package capture
