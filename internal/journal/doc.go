// Package journal keeps a SQLite audit trail of sort runs.
//
// Every report entry is appended to the outcomes table as it is produced and
// the runs table holds per-run totals for the history command. The journal is
// never consulted when placing files: collision handling stays a pairwise
// comparison against the destination tree.
package journal
