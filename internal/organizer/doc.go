// Package organizer moves classified media into a YEAR/MM tree.
//
// Placer resolves the destination for a single file: it creates the bucket
// directory, disambiguates name collisions by content fingerprint, performs
// the move, and carries sidecars along under the primary's final base name.
// Organizer drives a whole run over one or more input folders, turning every
// per-file and per-folder problem into an outcome.Entry so a bad file or
// folder never aborts the rest of the run. A flock on the output root keeps
// two runs from writing the same tree.
package organizer
