package outcome

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies what happened to a single file or folder during a run.
type Kind string

const (
	KindPlaced                  Kind = "placed"
	KindDuplicateSkipped        Kind = "duplicate_skipped"
	KindSidecarDeferred         Kind = "sidecar_deferred"
	KindUnsupportedType         Kind = "unsupported_type"
	KindDateUnresolved          Kind = "date_unresolved"
	KindDestinationCreateFailed Kind = "destination_create_failed"
	KindMoveFailed              Kind = "move_failed"
	KindFolderUnreadable        Kind = "folder_unreadable"
	KindNoFilesFound            Kind = "no_files_found"
)

// Kinds lists every kind in report order.
var Kinds = []Kind{
	KindPlaced,
	KindDuplicateSkipped,
	KindSidecarDeferred,
	KindUnsupportedType,
	KindDateUnresolved,
	KindDestinationCreateFailed,
	KindMoveFailed,
	KindFolderUnreadable,
	KindNoFilesFound,
}

// IsFailure reports whether the kind counts against the exit status.
// Skips (unsupported types, duplicates, deferred sidecars) are deliberate
// outcomes and do not.
func (k Kind) IsFailure() bool {
	switch k {
	case KindDateUnresolved, KindDestinationCreateFailed, KindMoveFailed, KindFolderUnreadable:
		return true
	default:
		return false
	}
}

// Label renders the kind for humans, e.g. "Duplicate Skipped".
func (k Kind) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(k), "_", " "))
}

// Entry records the outcome for one source path.
type Entry struct {
	Kind        Kind
	Source      string
	Destination string
	Reason      string
	Bytes       int64
	Sidecars    []SidecarEntry
	RecordedAt  time.Time
}

// SidecarEntry records the outcome of moving one sidecar alongside its primary.
type SidecarEntry struct {
	Source      string
	Destination string
	Err         string
}

// Summary aggregates counts per kind.
type Summary struct {
	Counts     map[Kind]int
	BytesMoved int64
	Failures   int
}

// Report collects every entry produced by a run.
type Report struct {
	RunID      string
	OutputRoot string
	Inputs     []string
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []Entry
}

// Add appends an entry, stamping it with the current time when unset.
func (r *Report) Add(e Entry) {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	r.Entries = append(r.Entries, e)
}

// Summary computes per-kind counts. Sidecar move failures count as failures
// even though the primary was placed.
func (r *Report) Summary() Summary {
	s := Summary{Counts: make(map[Kind]int, len(Kinds))}
	for _, e := range r.Entries {
		s.Counts[e.Kind]++
		if e.Kind == KindPlaced {
			s.BytesMoved += e.Bytes
		}
		if e.Kind.IsFailure() {
			s.Failures++
		}
		for _, sc := range e.Sidecars {
			if sc.Err != "" {
				s.Failures++
			}
		}
	}
	return s
}

// Filter returns the entries with the given kind, in insertion order.
func (r *Report) Filter(kind Kind) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
