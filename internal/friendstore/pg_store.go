package friendstore

import (
	"context"
	"database/sql"
	"fmt"

	"chatrelay/internal/relay"
)

const schema = `
CREATE TABLE IF NOT EXISTS friendships (
    from_name  TEXT        NOT NULL,
    to_name    TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (from_name, to_name)
)`

// PostgresStore keeps one row per directed edge.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// EnsureSchema creates the friendships table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create friendships: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]relay.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_name, to_name FROM friendships ORDER BY from_name, to_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []relay.Edge
	for rows.Next() {
		var e relay.Edge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, edges []relay.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const ins = `INSERT INTO friendships (from_name, to_name)
	             VALUES ($1, $2)
	             ON CONFLICT DO NOTHING`
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, ins, e.From, e.To); err != nil {
			return fmt.Errorf("insert %s->%s: %w", e.From, e.To, err)
		}
	}
	return tx.Commit()
}
