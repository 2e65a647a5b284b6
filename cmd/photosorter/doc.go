// Package main hosts the photosorter CLI.
//
// The Cobra command tree loads configuration once per invocation, builds the
// classifier and placement engine for `sort`, streams outcomes into the run
// journal, and renders the run summary on stdout. Logs go to stderr so the
// summary can be piped. `history` reads the journal back and `config`
// scaffolds, prints and validates the TOML configuration.
package main
