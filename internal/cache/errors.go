package cache

import "errors"

// ErrUnavailable signals the backend itself is unreachable or degraded
// (connection refused, circuit open). Treated by the repository decorator
// as a cache miss on reads and as log-and-continue on writes.
var ErrUnavailable = errors.New("cache: backend unavailable")

// ErrSerialization signals a cached blob failed to decode. Always treated
// as a miss, never as a hard error.
var ErrSerialization = errors.New("cache: deserialization failed")
