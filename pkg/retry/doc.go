// Package retry provides bounded-retry logic for transient failures in
// network operations.
//
// Features:
//   - Multiple backoff strategies (constant, linear, exponential)
//   - Context support for cancellation mid-delay
//   - Configurable retry predicates
//
// The page downloader uses a ConstantBackoff with a RetryAll predicate:
// a fixed wait between attempts and no error-class filtering, matching the
// upstream API's behavior where any failure is worth one more try within
// the budget.
//
// Basic usage:
//
//	cfg := &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     &retry.ConstantBackoff{Delay: 5 * time.Second},
//		RetryIf:     retry.RetryAll,
//		Context:     ctx,
//		Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(func() error {
//		return client.FetchPage(ctx, req)
//	}, cfg)
package retry
