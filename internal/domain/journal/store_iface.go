package journal

import (
	"context"
	"time"
)

type StoreAPI interface {
	Insert(ctx context.Context, entry Entry) error
	ListByAccount(ctx context.Context, account string, limit int) ([]Entry, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
}
