package masking

// RedactGuidance applies the built-in patterns to guardian guidance text
// before it is handed to the logger. This path can't itself fail — it's
// pure regex substitution — so there's no error return to plumb through
// every log call site.
func RedactGuidance(text string) string {
	if text == "" {
		return text
	}
	redacted := text
	for _, p := range builtinPatterns {
		redacted = p.Regex.ReplaceAllString(redacted, p.Replacement)
	}
	return redacted
}
