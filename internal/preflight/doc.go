// Package preflight provides read-only readiness checks for the paths a sort
// run touches: the output root, the input folders and the journal directory.
//
// The CLI "photosorter check" command prints the results. Sort runs do not
// call these checks; they record per-file outcomes instead.
package preflight
