package pgassist_test

import (
	"context"
	"os"
	"testing"

	pgassist "github.com/SheshuGit/MCP-Postgres"
	"github.com/jackc/pgx/v5"
	"github.com/rickchristie/govner/pgflock/client"
	"github.com/rs/zerolog"
)

const (
	pgflockLockerPort = 9776
	pgflockPassword   = "pgflock"
)

func acquireTestDB(t *testing.T) string {
	t.Helper()
	connStr, err := client.Lock(pgflockLockerPort, t.Name(), pgflockPassword)
	if err != nil {
		t.Fatalf("Failed to acquire test database: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Unlock(pgflockLockerPort, pgflockPassword, connStr)
	})
	return connStr
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func defaultConfig() pgassist.Config {
	return pgassist.Config{
		Pool: pgassist.PoolConfig{MaxConns: 5},
		Query: pgassist.QueryConfig{
			DefaultTimeoutSeconds:       30,
			ListTablesTimeoutSeconds:    10,
			DescribeTableTimeoutSeconds: 10,
			PreviewTimeoutSeconds:       10,
			MaxSQLLength:                100000,
			MaxResultLength:             100000,
		},
	}
}

func newTestInstance(t *testing.T, config pgassist.Config) (*pgassist.Assistant, string) {
	t.Helper()
	connStr := acquireTestDB(t)
	a, err := pgassist.New(connStr, config, testLogger())
	if err != nil {
		t.Fatalf("Failed to create Assistant: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, connStr
}

// setupTable runs DDL or seed DML through a direct connection. DDL is
// blocked on the RunSQL path, so fixtures go around it.
func setupTable(t *testing.T, connStr string, sql string) {
	t.Helper()
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("setup connect failed: %v", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, sql); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
}

// countRows returns the row count of a table through a direct connection.
func countRows(t *testing.T, connStr string, table string) int {
	t.Helper()
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("count connect failed: %v", err)
	}
	defer conn.Close(ctx)
	var n int
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func assertKind(t *testing.T, err error, want pgassist.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := pgassist.KindOf(err); got != want {
		t.Fatalf("expected error kind %s, got %s (%v)", want, got, err)
	}
}
