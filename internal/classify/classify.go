// Package classify assigns raw SQL strings to risk classes using
// case-insensitive substring inspection. It is purely lexical: no
// parsing, no word boundaries. The matching is intentionally blunt —
// a statement that merely mentions a blocked keyword inside a string
// literal or identifier (a table named "created_items" contains
// "create") is rejected too. False positives are preferred over
// letting a DDL statement through.
package classify

import "strings"

// Classification is the risk class assigned to a statement.
type Classification string

const (
	// ClassSelect covers statements detected as read queries.
	ClassSelect Classification = "select"

	// ClassMutating covers statements assumed to modify data
	// (INSERT, UPDATE, DELETE, and anything else not caught above).
	ClassMutating Classification = "mutating"

	// ClassForbiddenDDL covers statements containing a blocked
	// schema-changing keyword. Takes precedence over all other classes.
	ClassForbiddenDDL Classification = "forbidden_ddl"
)

// forbiddenTokens are the blocked DDL keywords, matched as substrings
// anywhere in the lowercased statement.
var forbiddenTokens = []string{"drop", "alter", "truncate", "create"}

// Classify assigns a risk class to sql. The forbidden-DDL check has
// highest precedence; select detection accepts the keyword anywhere in
// the text; everything else is treated as mutating.
func Classify(sql string) Classification {
	if _, found := ForbiddenToken(sql); found {
		return ClassForbiddenDDL
	}
	if StartsWithSelect(sql) || ContainsSelect(sql) {
		return ClassSelect
	}
	return ClassMutating
}

// ForbiddenToken returns the first blocked DDL keyword found anywhere
// in the lowercased statement, and whether one was found.
func ForbiddenToken(sql string) (string, bool) {
	lowered := strings.ToLower(sql)
	for _, token := range forbiddenTokens {
		if strings.Contains(lowered, token) {
			return token, true
		}
	}
	return "", false
}

// ContainsSelect reports whether the statement contains "select"
// anywhere, case-insensitively. This is the read path's admission
// test.
func ContainsSelect(sql string) bool {
	return strings.Contains(strings.ToLower(sql), "select")
}

// StartsWithSelect reports whether the trimmed statement starts with
// "select", case-insensitively. This is the write path's rejection
// test.
func StartsWithSelect(sql string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sql)), "select")
}
