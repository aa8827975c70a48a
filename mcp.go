package pgassist

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// previewURIPrefix is the resource URI scheme for table previews.
const previewURIPrefix = "pg://preview/"

// RegisterMCPTools registers ListTables, DescribeTable, RunSelect,
// and RunSQL as MCP tools on the given MCP server.
func RegisterMCPTools(mcpServer *server.MCPServer, a *Assistant) {
	// ListTables tool
	listTablesTool := mcp.NewTool("list_tables",
		mcp.WithDescription("List all table names in the public schema of the database, sorted ascending."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listTablesTool, a.loggedToolHandler("list_tables", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		output, err := a.ListTables(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal list tables result")
	}))

	// DescribeTable tool
	describeTableTool := mcp.NewTool("describe_table",
		mcp.WithDescription("Describe the schema of a table: column names, data types, nullability, and defaults, in column order."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("The table name to describe"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(describeTableTool, a.loggedToolHandler("describe_table", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := req.RequireString("table_name")
		if err != nil {
			return mcp.NewToolResultError("table_name parameter is required"), nil
		}
		output, err := a.DescribeTable(ctx, DescribeTableInput{Table: table})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal describe table result")
	}))

	// RunSelect tool
	runSelectTool := mcp.NewTool("run_select",
		mcp.WithDescription("Execute a read-only SQL SELECT query and return the result rows as JSON."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The SELECT query to execute"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(runSelectTool, a.loggedToolHandler("run_select", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		output, err := a.RunSelect(ctx, RunSelectInput{Query: query})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal query result")
	}))

	// RunSQL tool
	runSQLTool := mcp.NewTool("run_sql",
		mcp.WithDescription("Execute a non-SELECT SQL command (INSERT, UPDATE, DELETE) and return the number of rows affected. DDL commands (DROP, ALTER, CREATE, TRUNCATE) are blocked."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The SQL command to execute"),
		),
		mcp.WithDestructiveHintAnnotation(true),
	)

	mcpServer.AddTool(runSQLTool, a.loggedToolHandler("run_sql", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		output, err := a.RunSQL(ctx, RunSQLInput{Query: query})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal execution result")
	}))
}

// RegisterMCPResources registers the pg://preview/{table} resource
// template, which returns the first 10 rows of a table as JSON.
func RegisterMCPResources(mcpServer *server.MCPServer, a *Assistant) {
	previewTemplate := mcp.NewResourceTemplate(
		previewURIPrefix+"{table}",
		"Table preview",
		mcp.WithTemplateDescription("The first 10 rows of the named table, as JSON."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	mcpServer.AddResourceTemplate(previewTemplate, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		table := strings.TrimPrefix(req.Params.URI, previewURIPrefix)
		if table == "" || table == req.Params.URI {
			return nil, newError(KindDatabase, "invalid preview URI %q", req.Params.URI)
		}

		output, err := a.PreviewTable(ctx, PreviewTableInput{Table: table})
		if err != nil {
			return nil, err
		}
		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return nil, wrapError(KindDatabase, "failed to marshal preview result", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// RegisterMCPPrompts registers the sql_prompt prompt template. The
// prompt only renders text; nothing is executed.
func RegisterMCPPrompts(mcpServer *server.MCPServer) {
	sqlPrompt := mcp.NewPrompt("sql_prompt",
		mcp.WithPromptDescription("Guide the model to generate a SQL query from a natural language request."),
		mcp.WithArgument("nl",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("The natural language request to convert into SQL"),
		),
	)

	mcpServer.AddPrompt(sqlPrompt, func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		nl := req.Params.Arguments["nl"]
		if nl == "" {
			return nil, newError(KindDatabase, "nl argument is required")
		}
		return mcp.NewGetPromptResult(
			"SQL generation instruction",
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(SQLPrompt(nl))),
			},
		), nil
	})
}

// marshalToolResult encodes a tool output value as a JSON text result.
func marshalToolResult(v interface{}, failMsg string) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(failMsg), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (a *Assistant) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		respLen := resultLength(result)
		a.logger.Info().
			Str("tool", tool).
			Int("request_bytes", reqLen).
			Int("response_bytes", respLen).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}
