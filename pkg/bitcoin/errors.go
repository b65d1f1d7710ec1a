package bitcoin

import "errors"

// Error kinds from the core's error taxonomy. Callers distinguish them with
// errors.Is; wrapped errors carry additional context via fmt.Errorf("...: %w").
var (
	// ErrDomain covers cross-field/cross-curve arithmetic and out-of-range
	// scalars (field elements, curve points, private keys, signatures).
	ErrDomain = errors.New("domain error")

	// ErrFormat covers malformed SEC/DER/base58/WIF/varint/script encodings.
	ErrFormat = errors.New("format error")

	// ErrChecksum covers base58-checksum verification failures.
	ErrChecksum = errors.New("checksum error")

	// ErrScriptInvalid marks a Script that failed to validate. It is never
	// returned from Script.Evaluate (which returns a bool); it is available
	// to callers that want an error-shaped result.
	ErrScriptInvalid = errors.New("script invalid")

	// ErrFetch covers external transaction fetch/parse failures.
	ErrFetch = errors.New("fetch error")
)
