package upstream

import "errors"

// Tagged errors the HTTP layer maps to response codes. Wrap with
// fmt.Errorf("...: %w", ...) so errors.Is keeps matching after wrapping.
var (
	// ErrBadMethod maps to 405 with the fixed Method Not Allowed body.
	ErrBadMethod = errors.New("method not allowed")

	// ErrBadRequest maps to 400: unreadable or schema-violating request body.
	ErrBadRequest = errors.New("bad request")

	// ErrUpstreamUnavailable maps to 503: dial, timeout, or transport failure
	// before a response arrived.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamMalformed maps to 502: the upstream answered, but with
	// non-JSON or a shape the relay cannot use.
	ErrUpstreamMalformed = errors.New("upstream returned malformed response")
)
