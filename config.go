package pgassist

// Config is the base configuration used by library mode via New().
type Config struct {
	Pool  PoolConfig  `json:"pool" koanf:"pool"`
	Query QueryConfig `json:"query" koanf:"query"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
// It is populated from environment variables by internal/configure.
type ServerConfig struct {
	Config     `koanf:",squash"`
	Connection ConnectionConfig `json:"connection" koanf:"connection"`
	Server     ServerSettings   `json:"server" koanf:"server"`
	Logging    LoggingConfig    `json:"log" koanf:"log"`
}

// ConnectionConfig holds database connection parameters used by CLI mode.
type ConnectionConfig struct {
	Host     string `json:"host" koanf:"host"`
	Port     int    `json:"port" koanf:"port"`
	DBName   string `json:"dbname" koanf:"dbname"`
	User     string `json:"user" koanf:"user"`
	Password string `json:"password" koanf:"password"`
	SSLMode  string `json:"sslmode" koanf:"sslmode"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxConns              int    `json:"max_conns" koanf:"max_conns"`
	MinConns              int    `json:"min_conns" koanf:"min_conns"`
	AcquireTimeoutSeconds int    `json:"acquire_timeout_seconds" koanf:"acquire_timeout_seconds"`
	MaxConnLifetime       string `json:"max_conn_lifetime" koanf:"max_conn_lifetime"`
	MaxConnIdleTime       string `json:"max_conn_idle_time" koanf:"max_conn_idle_time"`
	HealthCheckPeriod     string `json:"health_check_period" koanf:"health_check_period"`
}

// QueryConfig holds statement execution settings.
type QueryConfig struct {
	DefaultTimeoutSeconds       int  `json:"default_timeout_seconds" koanf:"default_timeout_seconds"`
	ListTablesTimeoutSeconds    int  `json:"list_tables_timeout_seconds" koanf:"list_tables_timeout_seconds"`
	DescribeTableTimeoutSeconds int  `json:"describe_table_timeout_seconds" koanf:"describe_table_timeout_seconds"`
	PreviewTimeoutSeconds       int  `json:"preview_timeout_seconds" koanf:"preview_timeout_seconds"`
	MaxSQLLength                int  `json:"max_sql_length" koanf:"max_sql_length"`
	MaxResultLength             int  `json:"max_result_length" koanf:"max_result_length"`
	ValidatePreviewTable        bool `json:"validate_preview_table" koanf:"validate_preview_table"`

	// TimeoutRules map statement patterns to specific timeouts; first
	// match wins, falling back to DefaultTimeoutSeconds. Library-mode
	// only — there is no environment-variable surface for rules.
	TimeoutRules []TimeoutRule `json:"timeout_rules" koanf:"-"`
}

// TimeoutRule maps a SQL regex pattern to a specific timeout duration.
type TimeoutRule struct {
	Pattern        string `json:"pattern"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// ServerSettings holds HTTP server settings for CLI mode.
type ServerSettings struct {
	Port               int    `json:"port" koanf:"port"`
	APIKey             string `json:"api_key" koanf:"api_key"`
	HealthCheckEnabled bool   `json:"health_check_enabled" koanf:"health_check_enabled"`
	HealthCheckPath    string `json:"health_check_path" koanf:"health_check_path"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `json:"level" koanf:"level"`   // debug, info, warn, error
	Format string `json:"format" koanf:"format"` // json, text
	Output string `json:"output" koanf:"output"` // stderr, stdout, or file path
}
