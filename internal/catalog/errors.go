package catalog

import "errors"

// Typed errors returned by the catalog client. Callers treat all of them
// as non-fatal: a failed page fetch degrades to zero items for that page.
var (
	ErrBadRequest  = errors.New("catalog: bad request")
	ErrRateLimited = errors.New("catalog: rate limited")
	ErrServer      = errors.New("catalog: server error")
)
