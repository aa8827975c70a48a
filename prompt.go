package pgassist

// sqlPromptInstruction is the fixed instruction prepended to the
// caller's natural-language request.
const sqlPromptInstruction = "Convert the following natural language request into an SQL query. " +
	"Return only SQL.\n\nRequest:\n"

// SQLPrompt renders the sql_prompt template: a fixed instruction
// concatenated with the caller's natural-language text. Nothing is
// executed.
func SQLPrompt(naturalLanguage string) string {
	return sqlPromptInstruction + naturalLanguage
}
