// Package pgassist exposes a PostgreSQL database to tool-calling AI
// agents through the Model Context Protocol (MCP).
//
// It provides four tools — ListTables, DescribeTable, RunSelect, and
// RunSQL — plus a pg://preview/{table} resource and a sql_prompt prompt
// template. Statements are never parsed: a deliberately blunt lexical
// policy blocks anything containing a DDL keyword (drop, alter,
// truncate, create) on the write path, and routes reads and writes to
// separate entry points. The policy prefers false positives over false
// negatives; a legitimate statement that merely mentions a blocked
// keyword is rejected.
//
// All database access goes through a single lazily-created pgx
// connection pool. Checkout waits are bounded, every statement runs
// under a resolved timeout, and failures are reported with a typed
// [Kind] so callers can tell a retryable pool/timeout condition from a
// policy rejection.
//
// # Library Usage
//
//	a, err := pgassist.New(connString, pgassist.Config{
//		Pool: pgassist.PoolConfig{MaxConns: 10},
//		Query: pgassist.QueryConfig{
//			DefaultTimeoutSeconds:       30,
//			ListTablesTimeoutSeconds:    10,
//			DescribeTableTimeoutSeconds: 10,
//		},
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer a.Close(ctx)
//
//	if err := a.Ping(ctx); err != nil {
//		log.Fatal(err) // database unreachable: do not serve
//	}
//
//	out, err := a.RunSelect(ctx, pgassist.RunSelectInput{Query: "SELECT * FROM users LIMIT 10"})
//
// Or register everything on an MCP server:
//
//	pgassist.RegisterMCPTools(mcpServer, a)
//	pgassist.RegisterMCPResources(mcpServer, a)
//	pgassist.RegisterMCPPrompts(mcpServer)
package pgassist
