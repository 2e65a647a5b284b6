// Package classify maps a candidate path to a media kind and a year/month
// bucket.
//
// Images prefer the embedded capture time returned by a capture.Reader and
// fall back to the filesystem modification time whenever the reader reports
// an absent or unsupported timestamp or fails outright. Videos always use the
// modification time.
package classify
