package catalog

// SearchEnvelope is the response envelope of the dataset search endpoint.
// The scraper only consumes the total-record-count field; the rest of the
// body is persisted unparsed. TotalRegistros is a pointer so an absent
// field is distinguishable from a genuine zero.
type SearchEnvelope struct {
	TotalRegistros *int `json:"totalRegistros"`
}
