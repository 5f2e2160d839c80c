package ratelimit

import "errors"

// ErrRateLimited is the sentinel a caller's model-call wrapper should wrap
// around a provider's 429-equivalent response before passing it to
// RecordRejection's caller-visible error path. IsRateLimitError recognizes
// both a *RateLimitError (via errors.As) and this sentinel (via errors.Is).
var ErrRateLimited = errors.New("ratelimit: rate limited")

// RateLimitError carries the provider-reported reason for a rejection so
// IsRateLimitError can recognize rate-limit responses from arbitrary
// provider client errors without string-matching their messages.
type RateLimitError struct {
	Provider string
	Model    string
	Reason   string
}

func (e *RateLimitError) Error() string {
	return "ratelimit: " + e.Provider + "/" + e.Model + ": " + e.Reason
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// IsRateLimitError reports whether err (or anything it wraps) indicates a
// provider rate-limit rejection.
func IsRateLimitError(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle) || errors.Is(err, ErrRateLimited)
}
