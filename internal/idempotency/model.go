package idempotency

import (
	"errors"
	"time"
)

// ErrKeyExists is returned by Repository.Put when another writer already
// inserted a record for this key: two concurrent requests carrying the same
// idempotency key can both see a miss, and the first to actually land the
// insert wins. Service treats this as a signal to re-fetch and return the
// winner's record, not as a failure.
var ErrKeyExists = errors.New("idempotency: key already recorded")

// Record is a cached successful write response, keyed by a client-supplied
// opaque string. No structural validation is performed on Key; keys are
// global, not namespaced per caller.
type Record struct {
	Key        string
	StatusCode int
	Payload    []byte
	CreatedAt  time.Time
}
