// Package configure loads server configuration from environment
// variables, layering them over built-in defaults.
//
// Two variable families are recognized. The database and server
// variables use their original plain names (DB_HOST, DB_PORT, DB_NAME,
// DB_USER, DB_PASSWORD, DB_SSLMODE, PORT, MCP_API_KEY). Tuning
// variables use the PGASSIST_ prefix and dotted sections, e.g.
// PGASSIST_POOL_MAX_CONNS, PGASSIST_QUERY_DEFAULT_TIMEOUT_SECONDS,
// PGASSIST_LOG_LEVEL.
package configure

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	pgassist "github.com/SheshuGit/MCP-Postgres"
)

// envPrefix is the prefix for tuning variables.
const envPrefix = "PGASSIST_"

// plainKeys maps the original unprefixed variable names to config keys.
var plainKeys = map[string]string{
	"DB_HOST":     "connection.host",
	"DB_PORT":     "connection.port",
	"DB_NAME":     "connection.dbname",
	"DB_USER":     "connection.user",
	"DB_PASSWORD": "connection.password",
	"DB_SSLMODE":  "connection.sslmode",
	"PORT":        "server.port",
	"MCP_API_KEY": "server.api_key",
}

// defaults mirror the original service's fallbacks: localhost:5432 for
// the database and port 8080 for the HTTP listener.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"connection.host":                      "localhost",
		"connection.port":                      5432,
		"connection.sslmode":                   "",
		"server.port":                          8080,
		"server.health_check_enabled":          false,
		"server.health_check_path":             "/health-check",
		"pool.max_conns":                       10,
		"pool.min_conns":                       0,
		"pool.acquire_timeout_seconds":         10,
		"query.default_timeout_seconds":        30,
		"query.list_tables_timeout_seconds":    10,
		"query.describe_table_timeout_seconds": 10,
		"query.preview_timeout_seconds":        10,
		"query.max_sql_length":                 100000,
		"query.max_result_length":              100000,
		"query.validate_preview_table":         false,
		"log.level":                            "info",
		"log.format":                           "json",
		"log.output":                           "stderr",
	}
}

// Load builds a ServerConfig from the environment.
func Load() (*pgassist.ServerConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// A callback returning "" tells koanf to skip the variable, so all
	// unrelated environment variables are ignored.
	if err := k.Load(env.Provider("", ".", mapEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg pgassist.ServerConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// mapEnvKey translates an environment variable name to a config key,
// or "" for variables that are not part of the config surface.
func mapEnvKey(name string) string {
	if key, ok := plainKeys[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, envPrefix) {
		return ""
	}
	// PGASSIST_POOL_MAX_CONNS -> pool.max_conns; the section is the
	// first word after the prefix.
	rest := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return ""
	}
	switch parts[0] {
	case "pool", "query", "server", "log", "connection":
		return parts[0] + "." + parts[1]
	}
	return ""
}
