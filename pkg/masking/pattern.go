// Package masking redacts guardian guidance text before it is logged:
// guidance text returned by the judge's summarization call may
// echo fragments of a URL, email address, or other identifying detail
// present in the overrides it was built from, and those fragments must
// not leak into structured logs.
package masking

import "regexp"

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns are compiled once at package init. They target the PII
// shapes most likely to appear in free-text guidance: email addresses and
// full URLs (domains alone are left intact — they're the whole point of
// guidance like "block streaming sites after 9pm").
var builtinPatterns = []CompiledPattern{
	{
		Name:        "email",
		Regex:       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		Replacement: "[REDACTED_EMAIL]",
	},
	{
		Name:        "url_path",
		Regex:       regexp.MustCompile(`https?://[^\s]+`),
		Replacement: "[REDACTED_URL]",
	},
}
