package journal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps the journal in Postgres. The table is created by the
// embedded migrations in platform/db.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{DB: pool}
}

func (s *PGStore) Insert(ctx context.Context, entry Entry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO submission_journal (id, account, action, outcome, message, request_id, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, entry.ID, entry.Account, entry.Action, entry.Outcome, entry.Message, entry.RequestID, entry.CreatedAt)
	return err
}

func (s *PGStore) ListByAccount(ctx context.Context, account string, limit int) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, account, action, outcome, message, request_id, created_at
    FROM submission_journal
    WHERE account = $1
    ORDER BY created_at DESC
    LIMIT $2
  `, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Account, &e.Action, &e.Outcome, &e.Message, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PGStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM submission_journal WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}
