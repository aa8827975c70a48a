package pgassist

// RunSelectInput is the input for the RunSelect tool.
type RunSelectInput struct {
	Query string `json:"query"`
}

// RunSQLInput is the input for the RunSQL tool.
type RunSQLInput struct {
	Query string `json:"query"`
}

// RowsOutput is the result of a read query: column names in result-set
// order and one map per row. Row order is whatever the database engine
// produced; no ordering is added.
type RowsOutput struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// ExecOutput is the result of a mutating statement.
type ExecOutput struct {
	RowsAffected int64  `json:"rows_affected"`
	Message      string `json:"message"`
}

// ListTablesOutput holds the table names of the public schema in
// ascending lexical order.
type ListTablesOutput struct {
	Tables []string `json:"tables"`
}

// DescribeTableInput is the input for the DescribeTable tool.
type DescribeTableInput struct {
	Table string `json:"table_name"`
}

// ColumnDescriptor describes one column as reported by the catalog.
// IsNullable and Default are passed through verbatim; Default is nil
// when the column has no default.
type ColumnDescriptor struct {
	Name       string  `json:"column_name"`
	DataType   string  `json:"data_type"`
	IsNullable string  `json:"is_nullable"`
	Default    *string `json:"column_default"`
}

// DescribeTableOutput holds a table's columns in ordinal position
// order.
type DescribeTableOutput struct {
	Table   string             `json:"table_name"`
	Columns []ColumnDescriptor `json:"columns"`
}

// PreviewTableInput is the input for the PreviewTable resource.
type PreviewTableInput struct {
	Table string `json:"table"`
}
