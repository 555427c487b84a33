package ports

import "context"

// RecordStore persists small scalar records. Get returns
// domain.ErrRecordNotFound for absent keys and Delete of an absent key
// succeeds. Create writes only when the key is absent and otherwise returns
// domain.ErrRecordExists; of concurrent callers exactly one succeeds.
type RecordStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Create(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
