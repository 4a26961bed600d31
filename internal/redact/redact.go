// Package redact scrubs credentials, connection strings, personal data, SQL
// and file paths out of error text before it is logged.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; earlier rules see the original text.
var rules = []rule{
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*`), "[STACK_TRACE_REDACTED]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|mysql|mongodb)://\S+`), "[REDACTED_DSN]"},
	{regexp.MustCompile(`Key \([^)]*\)=\([^)]*\)`), "Key [REDACTED_VALUES]"},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|token|api[_-]?key)\s*[=:]\s*\S+`), "$1=[REDACTED]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b(?:SELECT\s.+?\sFROM|INSERT\s+INTO|UPDATE\s+\w+\s+SET|DELETE\s+FROM)\b[^;]*`), "[REDACTED_SQL]"},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), "[REDACTED_PATH]"},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.replacement)
	}
	return input
}

// Error redacts err's message. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
