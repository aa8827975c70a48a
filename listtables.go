package pgassist

import (
	"context"
	"time"
)

const listTablesSQL = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public'
ORDER BY table_name;
`

// ListTables returns the names of all tables in the public schema in
// ascending lexical order.
func (a *Assistant) ListTables(ctx context.Context) (*ListTablesOutput, error) {
	startTime := time.Now()

	pool, err := a.ensurePool(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer a.releaseSlot()

	queryCtx, cancel := context.WithTimeout(ctx, time.Duration(a.config.Query.ListTablesTimeoutSeconds)*time.Second)
	defer cancel()

	conn, err := pool.Acquire(queryCtx)
	if err != nil {
		return nil, mapExecError(err)
	}
	defer conn.Release()

	rows, err := conn.Query(queryCtx, listTablesSQL)
	if err != nil {
		return nil, mapExecError(err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapExecError(err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapExecError(err)
	}

	a.logger.Info().
		Dur("duration", time.Since(startTime)).
		Int("table_count", len(tables)).
		Msg("list_tables executed")

	return &ListTablesOutput{Tables: tables}, nil
}
