// Package storage handles the output directory and page file writes.
//
// One file per successfully fetched page, named {start}-{end}.json after
// the page's global record range, flat inside the output directory.
// Writes go through a temporary file and rename so a page file is either
// complete or absent, never partial.
package storage
