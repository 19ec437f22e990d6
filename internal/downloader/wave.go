package downloader

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"dadoscraper/pkg/catalog"
	"dadoscraper/pkg/logger"
	"dadoscraper/pkg/planner"
	"dadoscraper/pkg/ratelimit"
	"dadoscraper/pkg/retry"
)

// PageFetcher fetches one page of a license partition and returns the raw
// response body
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, pageSize int, license string) ([]byte, error)
}

// PageStorage persists a fetched page under its file name
type PageStorage interface {
	SavePage(name string, data []byte) error
}

// Outcome is the terminal result of one page worker. There are exactly two
// terminal states: the page was saved, or its retry budget was exhausted.
// Failures never propagate past the wave join.
type Outcome struct {
	Page     planner.Page
	Saved    bool
	Err      error
	Attempts int
	Duration time.Duration
}

// Wave downloads all pages of one license partition concurrently. In-flight
// requests are bounded by a shared weighted semaphore; a worker holds its
// permit for its entire lifetime, retries included.
type Wave struct {
	fetcher     PageFetcher
	storage     PageStorage
	sem         *semaphore.Weighted
	limiter     ratelimit.Limiter
	maxAttempts int
	retryDelay  time.Duration
	logger      logger.Logger
}

// New creates a fetch wave runner. The semaphore is shared across waves so
// the concurrency bound is global to the run, not per partition.
func New(
	fetcher PageFetcher,
	storage PageStorage,
	sem *semaphore.Weighted,
	limiter ratelimit.Limiter,
	maxAttempts int,
	retryDelay time.Duration,
	log logger.Logger,
) *Wave {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &Wave{
		fetcher:     fetcher,
		storage:     storage,
		sem:         sem,
		limiter:     limiter,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      log,
	}
}

// Run launches one worker per page and waits for every worker to reach a
// terminal outcome. This is a join barrier: completion order within the
// wave is arbitrary, but Run does not return until the whole wave is done.
//
// The context gates scheduling only (permit acquisition, retry delays,
// starting another attempt). An attempt already in flight when the context
// is cancelled finishes naturally, so no partial files are left behind.
func (w *Wave) Run(ctx context.Context, pages []planner.Page) []Outcome {
	outcomes := make([]Outcome, len(pages))

	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page planner.Page) {
			defer wg.Done()
			outcomes[i] = w.fetchPage(ctx, page)
		}(i, page)
	}
	wg.Wait()

	return outcomes
}

// fetchPage is one page worker: acquire a permit, then up to maxAttempts
// sequential attempts with a fixed delay between failures.
func (w *Wave) fetchPage(ctx context.Context, page planner.Page) Outcome {
	start := time.Now()
	outcome := Outcome{Page: page}

	// Blocking here is intentional backpressure, not a failure. The permit
	// is released only when the worker reaches its terminal outcome.
	if err := w.sem.Acquire(ctx, 1); err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		w.logger.WarnWithFields("page skipped before first attempt", map[string]interface{}{
			"file":    page.FileName(),
			"license": catalog.LicenseLabel(page.License),
			"reason":  err.Error(),
		})
		return outcome
	}
	defer w.sem.Release(1)

	w.logger.InfoWithFields("requesting page", map[string]interface{}{
		"license":    catalog.LicenseLabel(page.License),
		"api_offset": page.APIOffset,
		"file":       page.FileName(),
	})

	attempts := 0
	err := retry.Do(func() error {
		attempts++

		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		// The attempt itself runs on a fresh context: a cancelled run
		// lets the in-flight request finish its own timeout instead of
		// aborting mid-body.
		attemptCtx := context.Background()

		data, err := w.fetcher.FetchPage(attemptCtx, page.APIOffset, page.PageSize, page.License)
		if err != nil {
			return err
		}

		return w.storage.SavePage(page.FileName(), data)
	}, &retry.Config{
		MaxAttempts: w.maxAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: w.retryDelay},
		RetryIf:     retry.RetryAll,
		Context:     ctx,
		Logger: w.logger.WithFields(map[string]interface{}{
			"file":    page.FileName(),
			"license": catalog.LicenseLabel(page.License),
		}),
	})

	outcome.Attempts = attempts
	outcome.Duration = time.Since(start)

	if err != nil {
		outcome.Err = err
		w.logger.ErrorWithFields("page download exhausted", map[string]interface{}{
			"file":     page.FileName(),
			"license":  catalog.LicenseLabel(page.License),
			"attempts": attempts,
			"error":    err.Error(),
		})
		return outcome
	}

	outcome.Saved = true
	w.logger.InfoWithFields("page saved", map[string]interface{}{
		"file":     page.FileName(),
		"license":  catalog.LicenseLabel(page.License),
		"attempts": attempts,
		"duration": outcome.Duration,
	})
	return outcome
}
