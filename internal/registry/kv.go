package registry

import "errors"

// ErrNotFound is returned by a KV for keys that were never set.
var ErrNotFound = errors.New("registry: key not found")

// KV is the injected persistence capability. The registry defines only the
// logical entries and merge semantics; where the bytes live (sqlite, a
// file, test memory) is the implementation's business.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}
