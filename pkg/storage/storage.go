package storage

import "context"

// Storage is a small keyed store used for rendezvous session state. Create
// fails when the key already exists, which is how duplicate worker
// announcements are detected.
type Storage interface {
	Create(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (any, error)
	List(ctx context.Context) ([]any, error)
	Delete(ctx context.Context, key string) error
}
