package retry

import "errors"

// ErrRetriesExhausted is returned when every retry failed with a rate-limit signal.
// It wraps the last failure.
var ErrRetriesExhausted = errors.New("retries exhausted")
