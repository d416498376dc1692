package search

import "errors"

// Pipeline failure conditions. Per-item fetch/decode/encode failures are
// absorbed inside their stages; only these batch-level conditions propagate.
var (
	// ErrModelUnavailable reports that the embedding model could not serve
	// the request. Fatal; surfaced as a service failure.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrNoCandidates reports that the recall stage produced nothing,
	// whether the backend returned an empty set or failed at transport.
	ErrNoCandidates = errors.New("no candidates found")

	// ErrNoneEncodable reports that every recalled candidate failed to
	// download, decode, or encode.
	ErrNoneEncodable = errors.New("failed to encode any candidate images")
)
