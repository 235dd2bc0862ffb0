package plan

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Explain runs EXPLAIN (FORMAT JSON) for sql against a live database and
// returns the raw plan document. With analyze set the statement is executed,
// inside a transaction that is always rolled back.
func Explain(ctx context.Context, connStr string, sql string, analyze bool) ([]byte, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doc string
	if err := tx.QueryRow(ctx, explainStatement(sql, analyze)).Scan(&doc); err != nil {
		return nil, fmt.Errorf("executing EXPLAIN: %w", err)
	}

	return []byte(doc), nil
}

func explainStatement(sql string, analyze bool) string {
	if analyze {
		return "EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) " + sql
	}
	return "EXPLAIN (FORMAT JSON) " + sql
}
