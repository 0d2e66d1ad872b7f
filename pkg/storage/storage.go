package storage

import "context"

// Store is the device-local key/value persistence behind carts, credentials
// and the signed-in profile. Values are opaque byte payloads; callers own the
// encoding. A missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
