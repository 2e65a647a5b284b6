// Package media holds the value types shared by the classifier and the
// placement engine: File (a path plus its derived name attributes), Kind, the
// configurable extension Types, and the year/month Bucket.
package media
