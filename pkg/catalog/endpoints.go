package catalog

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the base URL for the dados.gov.br public API
	BaseURL = "https://dados.gov.br"

	// SearchEndpoint is the dataset search endpoint
	SearchEndpoint = "/api/publico/conjuntos-dados/buscar"

	// ProbePageSize is the minimal page size used when probing a
	// license partition for its total record count
	ProbePageSize = 1

	// MaxSearchDepth is the observed ceiling on combined records the
	// search endpoint will page through for a single filter. Partitions
	// larger than this are still planned optimistically; pages past the
	// ceiling fail at fetch time.
	MaxSearchDepth = 9999
)

// SearchURL constructs the search URL for one page of a license partition.
// The offset is 0-based and relative to the license filter; an empty
// license means "no filter".
func SearchURL(baseURL string, offset, pageSize int, license string) string {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("tamanhoPagina", strconv.Itoa(pageSize))
	params.Set("dadosAbertos", "true")
	if license != "" {
		params.Set("licenca", license)
	}

	return fmt.Sprintf("%s%s?%s", baseURL, SearchEndpoint, params.Encode())
}

// ProbeURL constructs the minimal-size query used to discover a license
// partition's total record count.
func ProbeURL(baseURL, license string) string {
	return SearchURL(baseURL, 0, ProbePageSize, license)
}

// LicenseLabel returns a human-readable name for a license filter,
// mapping the empty "no filter" category to "none".
func LicenseLabel(license string) string {
	if license == "" {
		return "none"
	}
	return license
}
