package pool

import "errors"

// ErrWorker wraps the first-in-input-order error returned by a worker in
// SettleThrow mode. Use errors.Is or errors.As against the underlying
// cause, not against ErrWorker itself, since callers compare against their
// own sentinel errors.
var ErrWorker = errors.New("pool: worker error")
