// Package outcome defines the result taxonomy of a sort run.
//
// Every per-file and per-folder failure is converted into an Entry with a Kind
// instead of aborting the run. The sentinel errors tag failures at the point
// they happen so the orchestrator can classify them with KindOf, and Report
// aggregates the entries for the CLI summary and the run journal.
package outcome
