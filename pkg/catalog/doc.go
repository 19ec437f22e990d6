// Package catalog provides the HTTP client for the dados.gov.br public
// dataset search API.
//
// The API is paginated with an `offset` query parameter (0-based, relative
// to the active license filter) and a `tamanhoPagina` page size. The only
// field the scraper ever parses is `totalRegistros` from the probe request;
// paginated page bodies are returned verbatim for persistence.
//
// Failures are converted into typed errors from pkg/errors so callers can
// reason about retryability by error class.
package catalog
