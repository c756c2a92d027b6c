// Package store persists state spaces and motion plans as line-oriented
// text files.
//
// Each state is one line of five comma-separated exact decimals: v0, v1,
// h0, h1, time. Plan files list each plan's states in order and separate
// plans with a blank line. File names encode the goal, resolution, horizon,
// and top speed they were produced under, and loading a file checks those
// values against the active model.
//
// Every file is written to a temporary sibling, flushed, fsynced, and
// renamed into place, so a reader never sees a partial file.
package store
