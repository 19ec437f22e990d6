// Package scraper orchestrates the bulk download of the dados.gov.br
// dataset catalog.
//
// The catalog is partitioned by license filter. Partitions are processed
// strictly one after another: probe the declared record count, plan the
// pages, run a bounded concurrent fetch wave, then commit the global
// file-naming cursor. The cursor advances by the declared total whether or
// not every page downloaded, so file-name ranges across partitions are
// pairwise non-overlapping and strictly increasing in processing order.
//
// Failure containment:
//   - a failed probe skips the partition (no naming reserved, run continues)
//   - a page that exhausts its retries is logged and reported as a missing
//     range; the run continues
//   - only output-directory setup is fatal
package scraper
