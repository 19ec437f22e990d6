package scraper

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"dadoscraper/internal/downloader"
	"dadoscraper/pkg/catalog"
	"dadoscraper/pkg/config"
	"dadoscraper/pkg/logger"
	"dadoscraper/pkg/planner"
	"dadoscraper/pkg/ratelimit"
	"dadoscraper/pkg/storage"
)

// CountProber discovers the declared total record count of a license
// partition. An error means "unknown", which is distinct from zero.
type CountProber interface {
	TotalRecords(ctx context.Context, license string) (int, error)
}

// WaveRunner downloads one partition's pages to their terminal outcomes
type WaveRunner interface {
	Run(ctx context.Context, pages []planner.Page) []downloader.Outcome
}

// CategoryResult summarizes one license partition's wave
type CategoryResult struct {
	License string
	Total   int
	Pages   int
	Saved   int
	Failed  int
	Skipped bool
	// SkipReason is set when the partition was skipped (zero records or
	// unknown count)
	SkipReason string
	// MissingRanges lists the global record ranges of this partition's
	// pages that exhausted their retries
	MissingRanges []string
}

// Summary is the final report of a run
type Summary struct {
	Categories  []CategoryResult
	PagesSaved  int
	PagesFailed int
	// MissingRanges lists the global record ranges of pages that
	// exhausted their retries this run. Their names stay reserved, so
	// these are permanent holes in the output numbering for this run,
	// even when a file of the same name survives from an earlier run.
	MissingRanges []string
	Interrupted   bool
	Elapsed       time.Duration
}

// Scraper sequences license partitions: probe, plan, fetch wave, cursor
// commit. Partitions run strictly one after another because the global
// cursor must be stable before the next partition plans its ranges.
type Scraper struct {
	prober CountProber
	wave   WaveRunner
	config *config.Config
	logger logger.Logger
}

// New creates a Scraper wired from configuration: a shared catalog client,
// the output directory, and a fetch wave gated by a run-wide semaphore.
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client := catalog.NewClient(cfg.Scrape.RequestTimeout, log)

	store, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to set up output directory: %w", err)
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}

	sem := semaphore.NewWeighted(int64(cfg.Scrape.Concurrency))
	wave := downloader.New(
		client,
		store,
		sem,
		limiter,
		cfg.Retry.MaxAttempts,
		cfg.Retry.Delay,
		log,
	)

	return &Scraper{
		prober: client,
		wave:   wave,
		config: cfg,
		logger: log,
	}, nil
}

// Run scrapes every configured license partition in order. Individual page
// or partition failures never abort the run; they are logged and reported
// in the returned summary. Cancelling the context stops new waves from
// launching and lets in-flight workers finish their current attempt.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	// Global file-naming cursor, 1-based. Owned by this loop: it moves
	// only between waves, never during one, so it needs no locking.
	cursor := 1

	for _, license := range s.config.Scrape.Licenses {
		if ctx.Err() != nil {
			s.logger.WarnWithFields("run interrupted, not starting further categories", map[string]interface{}{
				"license": catalog.LicenseLabel(license),
			})
			summary.Interrupted = true
			break
		}

		result, nextCursor := s.scrapeCategory(ctx, license, cursor)
		cursor = nextCursor

		summary.Categories = append(summary.Categories, result)
		summary.PagesSaved += result.Saved
		summary.PagesFailed += result.Failed
		summary.MissingRanges = append(summary.MissingRanges, result.MissingRanges...)

		if ctx.Err() != nil {
			summary.Interrupted = true
		}
	}

	summary.Elapsed = time.Since(start)

	s.logger.InfoWithFields("run complete", map[string]interface{}{
		"categories":   len(summary.Categories),
		"pages_saved":  summary.PagesSaved,
		"pages_failed": summary.PagesFailed,
		"interrupted":  summary.Interrupted,
		"elapsed":      summary.Elapsed,
	})

	return summary, nil
}

// scrapeCategory processes one license partition end to end and returns
// the cursor value for the next partition. The cursor advances by the
// declared total exactly when pages were planned; a skipped partition
// leaves it untouched.
func (s *Scraper) scrapeCategory(ctx context.Context, license string, cursor int) (CategoryResult, int) {
	label := catalog.LicenseLabel(license)
	result := CategoryResult{License: license}

	s.logger.InfoWithFields("starting category", map[string]interface{}{
		"license": label,
		"cursor":  cursor,
	})

	total, err := s.prober.TotalRecords(ctx, license)
	if err != nil {
		// Unknown count: skip without reserving any naming range. The
		// partition is independently re-runnable.
		s.logger.WarnWithFields("could not determine record count, skipping category", map[string]interface{}{
			"license": label,
			"error":   err.Error(),
		})
		result.Skipped = true
		result.SkipReason = "unknown record count"
		return result, cursor
	}

	result.Total = total

	if total == 0 {
		s.logger.InfoWithFields("no records for category, skipping", map[string]interface{}{
			"license": label,
		})
		result.Skipped = true
		result.SkipReason = "no records"
		return result, cursor
	}

	if total > catalog.MaxSearchDepth {
		s.logger.WarnWithFields("record count exceeds API search depth, planning optimistically", map[string]interface{}{
			"license": label,
			"total":   total,
			"limit":   catalog.MaxSearchDepth,
		})
	}

	plan := planner.Build(license, total, s.config.Scrape.PageSize, cursor)
	result.Pages = len(plan.Pages)

	s.logger.InfoWithFields("starting fetch wave", map[string]interface{}{
		"license": label,
		"pages":   len(plan.Pages),
		"total":   total,
	})

	outcomes := s.wave.Run(ctx, plan.Pages)

	// The report comes from this run's outcomes, not from the output
	// directory: a leftover file from an earlier run must not mask a page
	// that failed now.
	for _, outcome := range outcomes {
		if outcome.Saved {
			result.Saved++
			continue
		}
		result.Failed++
		result.MissingRanges = append(result.MissingRanges,
			fmt.Sprintf("%d-%d", outcome.Page.GlobalStart, outcome.Page.GlobalEnd))
	}

	// Cursor commit happens only here, after the wave's join barrier.
	// The advance is by declared total regardless of page failures:
	// naming ranges are reservations, not guarantees.
	s.logger.InfoWithFields("category finished", map[string]interface{}{
		"license":     label,
		"saved":       result.Saved,
		"failed":      result.Failed,
		"next_cursor": plan.NextCursor,
	})

	return result, plan.NextCursor
}
