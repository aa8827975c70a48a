package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	pgassist "github.com/SheshuGit/MCP-Postgres"
	"github.com/SheshuGit/MCP-Postgres/internal/configure"

	"golang.org/x/term"
)

func runDoctor() error {
	useColor := isTTY(os.Stderr.Fd())
	return doctor(os.Stderr, useColor)
}

func doctor(w io.Writer, useColor bool) error {
	fmt.Fprintln(w, "pgassist doctor")
	fmt.Fprintln(w)

	config, ok := doctorValidateConfig(w, useColor)
	if !ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above and run 'pgassist doctor' again.")
		return nil
	}

	doctorCheckConnectivity(w, useColor, config)

	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, config)
	return nil
}

// doctorValidateConfig loads and validates the environment configuration,
// printing check results. Returns the config and true if all checks passed.
func doctorValidateConfig(w io.Writer, useColor bool) (*pgassist.ServerConfig, bool) {
	allPassed := true

	config, err := configure.Load()
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Environment configuration loads: %v", err))
		return nil, false
	}
	printCheck(w, useColor, true, "Environment configuration loads")

	if config.Connection.DBName == "" {
		printCheck(w, useColor, false, "DB_NAME is set")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("DB_NAME is set (%s)", config.Connection.DBName))
	}

	if config.Server.Port <= 0 {
		printCheck(w, useColor, false, "server port is > 0")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("server port is > 0 (%d)", config.Server.Port))
	}

	if config.Server.APIKey == "" {
		printCheck(w, useColor, false, "MCP_API_KEY is set (all MCP requests will be rejected without it)")
		allPassed = false
	} else {
		printCheck(w, useColor, true, "MCP_API_KEY is set")
	}

	if config.Server.HealthCheckEnabled && config.Server.HealthCheckPath == "" {
		printCheck(w, useColor, false, "health check path is set (required when health check is enabled)")
		allPassed = false
	}

	regexOK := true
	for i, rule := range config.Query.TimeoutRules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("timeout_rules[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	if regexOK {
		printCheck(w, useColor, true, "All timeout rule patterns compile")
	}

	return config, allPassed
}

// doctorCheckConnectivity attempts a real database connection and counts
// the visible tables.
func doctorCheckConnectivity(w io.Writer, useColor bool, config *pgassist.ServerConfig) {
	if config.Connection.User == "" || config.Connection.Password == "" {
		printCheck(w, useColor, false, "DB_USER and DB_PASSWORD are set (skipping connectivity check)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connString := buildConnString(config.Connection, config.Connection.User, config.Connection.Password)
	logger := setupLogger(pgassist.LoggingConfig{Level: "error"})

	assistant, err := pgassist.New(connString, config.Config, logger)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Connection string is valid: %v", err))
		return
	}
	defer assistant.Close(ctx)

	if err := assistant.Ping(ctx); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Database is reachable: %v", err))
		return
	}
	printCheck(w, useColor, true, "Database is reachable")

	tables, err := assistant.ListTables(ctx)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Tables are listable: %v", err))
		return
	}
	printCheck(w, useColor, true, fmt.Sprintf("Tables are listable (%d in public schema)", len(tables.Tables)))
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	if pass {
		if useColor {
			fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", msg)
		}
	} else {
		if useColor {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

// printAgentSnippets prints MCP connection config snippets for AI agents.
// All requests need the Authorization header, so the snippets include it.
func printAgentSnippets(w io.Writer, useColor bool, config *pgassist.ServerConfig) {
	port := config.Server.Port
	url := fmt.Sprintf("http://localhost:%d/mcp", port)

	heading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "\033[1;36m%s\033[0m\n", title)
		} else {
			fmt.Fprintln(w, title)
		}
	}

	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading("Agent Connection Snippets")
	fmt.Fprintln(w)

	subheading("Claude Code")
	fmt.Fprintf(w, "  Run this command to add the server:\n\n")
	fmt.Fprintf(w, "    claude mcp add --transport http postgres %s --header \"Authorization: Bearer $MCP_API_KEY\"\n\n", url)
	fmt.Fprintf(w, "  Or add to .mcp.json (project scope):\n\n")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "postgres": {
        "type": "http",
        "url": "%s",
        "headers": {
          "Authorization": "Bearer <your MCP_API_KEY>"
        }
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	subheading("Cursor (.cursor/mcp.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "postgres": {
        "url": "%s",
        "headers": {
          "Authorization": "Bearer <your MCP_API_KEY>"
        }
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	subheading("Gemini CLI (~/.gemini/settings.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "postgres": {
        "httpUrl": "%s",
        "headers": {
          "Authorization": "Bearer <your MCP_API_KEY>"
        }
      }
    }
  }
`, url)
}

// isTTY returns true if the given file descriptor is a terminal.
func isTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}
