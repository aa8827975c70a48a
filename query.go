package pgassist

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/netip"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/SheshuGit/MCP-Postgres/internal/classify"
)

// RunSelect executes a read query. The statement is admitted if it
// contains "select" anywhere, case-insensitively; this check is
// deliberately looser than RunSQL's and does not consult the DDL
// keyword list. Returns all result rows as column-name-to-value maps,
// preserving the engine's column and row order.
func (a *Assistant) RunSelect(ctx context.Context, input RunSelectInput) (*RowsOutput, error) {
	startTime := time.Now()
	sql := input.Query

	if len(sql) > a.config.Query.MaxSQLLength {
		return nil, newError(KindDatabase, "SQL query too long: %d bytes exceeds maximum of %d bytes", len(sql), a.config.Query.MaxSQLLength)
	}
	if !classify.ContainsSelect(sql) {
		return nil, newError(KindIntentMismatch, "only SELECT queries are allowed here; use run_sql for mutating statements")
	}

	execTimeout, timeoutRule := a.timeoutMgr.Resolve(sql)
	output, err := a.queryRows(ctx, sql, execTimeout)
	if err != nil {
		a.logError(err, sql)
		return nil, err
	}

	logEvent := a.logger.Info().
		Str("sql", truncateForLog(sql, 200)).
		Dur("duration", time.Since(startTime)).
		Int("row_count", len(output.Rows))
	if timeoutRule != "" {
		logEvent = logEvent.Str("timeout_rule", timeoutRule)
	}
	logEvent.Msg("run_select executed")

	return output, nil
}

// RunSQL executes a mutating statement and commits it. Statements
// containing a blocked DDL keyword anywhere are rejected; statements
// that start with "select" are redirected to RunSelect. Each call is
// its own implicit transaction — there is no transaction state across
// calls, and a committed write is irreversible from here.
func (a *Assistant) RunSQL(ctx context.Context, input RunSQLInput) (*ExecOutput, error) {
	startTime := time.Now()
	sql := input.Query

	if len(sql) > a.config.Query.MaxSQLLength {
		return nil, newError(KindDatabase, "SQL query too long: %d bytes exceeds maximum of %d bytes", len(sql), a.config.Query.MaxSQLLength)
	}
	if token, found := classify.ForbiddenToken(sql); found {
		return nil, newError(KindForbiddenStatement, "DDL commands are not allowed: statement contains %q", token)
	}
	if classify.StartsWithSelect(sql) {
		return nil, newError(KindIntentMismatch, "use run_select for SELECT queries")
	}

	pool, err := a.ensurePool(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.acquireSlot(ctx); err != nil {
		a.logError(err, sql)
		return nil, err
	}
	defer a.releaseSlot()

	execTimeout, timeoutRule := a.timeoutMgr.Resolve(sql)
	queryCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	conn, err := pool.Acquire(queryCtx)
	if err != nil {
		err = mapExecError(err)
		a.logError(err, sql)
		return nil, err
	}
	defer conn.Release()

	tag, err := conn.Exec(queryCtx, sql)
	if err != nil {
		err = mapExecError(err)
		a.logError(err, sql)
		return nil, err
	}

	output := &ExecOutput{
		RowsAffected: tag.RowsAffected(),
		Message:      fmt.Sprintf("Executed successfully. Rows affected: %d", tag.RowsAffected()),
	}

	logEvent := a.logger.Info().
		Str("sql", truncateForLog(sql, 200)).
		Dur("duration", time.Since(startTime)).
		Int64("rows_affected", output.RowsAffected)
	if timeoutRule != "" {
		logEvent = logEvent.Str("timeout_rule", timeoutRule)
	}
	logEvent.Msg("run_sql executed")

	return output, nil
}

// queryRows ensures the pool, takes a slot, and runs sql under the
// given timeout, collecting every row. Shared by RunSelect and
// PreviewTable.
func (a *Assistant) queryRows(ctx context.Context, sql string, execTimeout time.Duration) (*RowsOutput, error) {
	pool, err := a.ensurePool(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer a.releaseSlot()

	queryCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	conn, err := pool.Acquire(queryCtx)
	if err != nil {
		return nil, mapExecError(err)
	}
	defer conn.Release()

	rows, err := conn.Query(queryCtx, sql)
	if err != nil {
		return nil, mapExecError(err)
	}

	output, err := collectRows(rows)
	if err != nil {
		return nil, mapExecError(err)
	}

	if err := a.truncateIfNeeded(output); err != nil {
		return nil, err
	}
	return output, nil
}

// collectRows reads all rows from pgx.Rows into a RowsOutput.
func collectRows(rows pgx.Rows) (*RowsOutput, error) {
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	resultRows := make([]map[string]interface{}, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &RowsOutput{Columns: columns, Rows: resultRows}, nil
}

// convertValue converts a pgx-returned value to a JSON-friendly Go type.
func convertValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float32:
		return convertFloat(float64(val))
	case float64:
		return convertFloat(val)
	case netip.Prefix:
		return val.String()
	case net.HardwareAddr:
		return val.String()
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		if val.NaN {
			return "NaN"
		}
		if val.InfinityModifier == pgtype.Infinity {
			return "Infinity"
		}
		if val.InfinityModifier == pgtype.NegativeInfinity {
			return "-Infinity"
		}
		b, err := val.MarshalJSON()
		if err != nil {
			return nil
		}
		return string(b)
	case [16]byte:
		// UUID
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case []byte:
		// bytea — base64 encode
		return base64.StdEncoding.EncodeToString(val)
	case string:
		return val
	case map[string]interface{}:
		result := make(map[string]interface{}, len(val))
		for k, v := range val {
			result[k] = convertValue(v)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, v := range val {
			result[i] = convertValue(v)
		}
		return result
	default:
		return val
	}
}

func convertFloat(f float64) interface{} {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return f
}

// mapExecError tags an error from pool acquisition or statement
// execution with the matching kind. Engine errors keep their message
// verbatim.
func mapExecError(err error) error {
	var alreadyTagged *Error
	if errors.As(err, &alreadyTagged) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindStatementTimeout, "statement execution exceeded the configured timeout", err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return wrapError(KindConnection, "failed to connect to the database", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Kind: KindDatabase, Message: pgErr.Message, Err: err}
	}
	return wrapError(KindDatabase, "", err)
}

// truncateIfNeeded rejects result sets whose JSON encoding exceeds
// MaxResultLength characters. The full rows are dropped — no partial
// result is ever returned alongside an error.
func (a *Assistant) truncateIfNeeded(output *RowsOutput) error {
	jsonBytes, err := json.Marshal(output.Rows)
	if err != nil {
		return wrapError(KindDatabase, "failed to encode result rows", err)
	}
	jsonStr := string(jsonBytes)
	if utf8.RuneCountInString(jsonStr) <= a.config.Query.MaxResultLength {
		return nil
	}
	runes := []rune(jsonStr)
	truncated := string(runes[:a.config.Query.MaxResultLength])
	return newError(KindDatabase, "%s...[truncated] Result is too long! Add limits in your query!", truncated)
}

// logError logs a failed statement with its error kind.
func (a *Assistant) logError(err error, sql string) {
	a.logger.Error().
		Err(err).
		Str("kind", string(KindOf(err))).
		Str("sql", truncateForLog(sql, 200)).
		Msg("statement failed")
}

// truncateForLog truncates a string for log output to avoid oversized
// log entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}
