package planner

import "fmt"

// Page describes one bounded slice of a license partition: where to fetch
// it from (API offset, relative to the partition) and the global 1-based
// record range that names its output file.
type Page struct {
	// License is the partition's filter token; empty means "no filter"
	License string
	// APIOffset is the 0-based record offset within the partition.
	// Always a multiple of the page size.
	APIOffset int
	// PageSize is the requested page size (the last page may hold fewer)
	PageSize int
	// Records is the number of records actually on this page
	Records int
	// GlobalStart and GlobalEnd are the inclusive 1-based global record
	// indices reserved for this page across the whole run
	GlobalStart int
	GlobalEnd   int
}

// FileName returns the output file name for the page: {start}-{end}.json
func (p Page) FileName() string {
	return fmt.Sprintf("%d-%d.json", p.GlobalStart, p.GlobalEnd)
}

// Plan is the full set of pages for one license partition plus the cursor
// value to commit once the partition's fetch wave has joined.
type Plan struct {
	License string
	Total   int
	Pages   []Page
	// NextCursor is the old cursor advanced by the declared total. Ranges
	// are reserved up front: the cursor moves by Total even if some pages
	// later fail to download.
	NextCursor int
}

// Build derives the pages for a license partition. Pure function of
// (total, pageSize, cursor); it never performs I/O.
//
// For page i (0-based): apiOffset = i*pageSize, records = min(pageSize,
// total-apiOffset), globalStart = cursor+apiOffset, globalEnd =
// globalStart+records-1. The resulting global ranges are contiguous,
// non-overlapping, and collectively span exactly total records starting
// at cursor.
func Build(license string, total, pageSize, cursor int) Plan {
	plan := Plan{
		License:    license,
		Total:      total,
		NextCursor: cursor,
	}

	if total <= 0 || pageSize <= 0 {
		return plan
	}

	numPages := (total + pageSize - 1) / pageSize
	plan.Pages = make([]Page, 0, numPages)

	for i := 0; i < numPages; i++ {
		apiOffset := i * pageSize
		records := total - apiOffset
		if records > pageSize {
			records = pageSize
		}

		start := cursor + apiOffset
		plan.Pages = append(plan.Pages, Page{
			License:     license,
			APIOffset:   apiOffset,
			PageSize:    pageSize,
			Records:     records,
			GlobalStart: start,
			GlobalEnd:   start + records - 1,
		})
	}

	plan.NextCursor = cursor + total
	return plan
}
