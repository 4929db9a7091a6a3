package journal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestPGStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS submission_journal (
    id TEXT PRIMARY KEY,
    account TEXT NOT NULL,
    action TEXT NOT NULL,
    outcome TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    request_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
  )`)
	require.NoError(t, err)

	svc := NewService(NewPGStore(pool))
	account := "pg-test-" + time.Now().Format("150405.000000")
	svc.Record(ctx, account, ActionContractSubmit, nil, "")

	entries, err := svc.List(ctx, account, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ActionContractSubmit, entries[0].Action)
	require.NoError(t, svc.Ping(ctx))
}
