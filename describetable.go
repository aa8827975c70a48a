package pgassist

import (
	"context"
	"time"
)

// The table name is always a bound parameter here, never interpolated
// into the statement text.
const describeTableSQL = `
SELECT column_name, data_type, is_nullable, column_default
FROM information_schema.columns
WHERE table_name = $1
ORDER BY ordinal_position;
`

// DescribeTable returns the columns of the named table in ordinal
// position order. is_nullable and column_default are passed through
// verbatim from the catalog; an unknown table yields an empty column
// list.
func (a *Assistant) DescribeTable(ctx context.Context, input DescribeTableInput) (*DescribeTableOutput, error) {
	startTime := time.Now()

	pool, err := a.ensurePool(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer a.releaseSlot()

	queryCtx, cancel := context.WithTimeout(ctx, time.Duration(a.config.Query.DescribeTableTimeoutSeconds)*time.Second)
	defer cancel()

	conn, err := pool.Acquire(queryCtx)
	if err != nil {
		return nil, mapExecError(err)
	}
	defer conn.Release()

	rows, err := conn.Query(queryCtx, describeTableSQL, input.Table)
	if err != nil {
		return nil, mapExecError(err)
	}
	defer rows.Close()

	columns := []ColumnDescriptor{}
	for rows.Next() {
		var col ColumnDescriptor
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.Default); err != nil {
			return nil, mapExecError(err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapExecError(err)
	}

	a.logger.Info().
		Str("table", input.Table).
		Dur("duration", time.Since(startTime)).
		Int("column_count", len(columns)).
		Msg("describe_table executed")

	return &DescribeTableOutput{Table: input.Table, Columns: columns}, nil
}
