// Package ratelimit provides optional request pacing for the catalog API.
//
// The scraper is primarily throttled by its concurrency limit; the token
// bucket here adds a requests-per-minute ceiling on top of it for runs
// against a rate-sensitive mirror. It is disabled by default
// (requests_per_minute: 0 selects the Unlimited limiter).
package ratelimit
