// Package planner computes the page layout for a license partition.
//
// Each partition is split into fixed-size pages addressed by a 0-based API
// offset local to that partition. File naming, by contrast, uses a single
// global 1-based cursor shared by all partitions in a run: the planner
// reserves [cursor, cursor+total) for the partition and hands back the
// advanced cursor for the next one. Reservation is by declared total, not
// by download success, so a failed page leaves a hole in the numbering
// rather than shifting every later partition's ranges.
package planner
