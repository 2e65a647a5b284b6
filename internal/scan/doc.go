// Package scan walks input folders and yields candidate file paths.
//
// The walk is a lazy iterator so the orchestrator can move files as they are
// found. Hidden entries are never yielded, listing failures are reported per
// directory as *ReadError values inside the sequence, and the output root can
// be excluded when it lives under an input folder.
package scan
