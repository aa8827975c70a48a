package pgassist

import (
	"context"
	"fmt"
	"time"
)

// PreviewTable returns the first 10 rows of the named table.
//
// The table name is interpolated directly into the statement text with
// no identifier escaping, so it must be treated as trusted input. With
// query.validate_preview_table enabled, the name is checked against
// the live public-schema table list before interpolation and unknown
// names are rejected.
func (a *Assistant) PreviewTable(ctx context.Context, input PreviewTableInput) (*RowsOutput, error) {
	startTime := time.Now()

	if a.config.Query.ValidatePreviewTable {
		if err := a.validateTableName(ctx, input.Table); err != nil {
			return nil, err
		}
	}

	sql := fmt.Sprintf("SELECT * FROM %s LIMIT 10", input.Table)
	output, err := a.queryRows(ctx, sql, time.Duration(a.config.Query.PreviewTimeoutSeconds)*time.Second)
	if err != nil {
		a.logError(err, sql)
		return nil, err
	}

	a.logger.Info().
		Str("table", input.Table).
		Dur("duration", time.Since(startTime)).
		Int("row_count", len(output.Rows)).
		Msg("preview_table executed")

	return output, nil
}

// validateTableName rejects names that do not appear in the live
// public-schema table list.
func (a *Assistant) validateTableName(ctx context.Context, name string) error {
	tables, err := a.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables.Tables {
		if t == name {
			return nil
		}
	}
	return newError(KindForbiddenStatement, "unknown table %q: preview is limited to tables in the public schema", name)
}
