package secrets

import (
	"regexp"
)

// Redactor scrubs sensitive substrings (DSNs, bearer tokens, API keys) out
// of strings before they reach a log line.
type Redactor struct {
	patterns    []*regexp.Regexp
	replacement string
}

// NewRedactor builds a Redactor with a default set of patterns for
// connection strings, bearer/basic auth headers, and common API key
// shapes.
func NewRedactor() *Redactor {
	defaultPatterns := []string{
		`postgres://[^:]+:[^@]+@[^/]+/[^\s?"']+`,
		`mysql://[^:]+:[^@]+@[^/]+/[^\s?"']+`,
		`(?i)(?:api[_-]?key|token|secret|password|pwd)["\s]*[:=]["\s]*[^\s"',}]+`,
		`(?i)bearer\s+[a-zA-Z0-9\-\._~\+/]+=*`,
		`(?i)basic\s+[a-zA-Z0-9\+/]+=*`,
		`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`,
	}

	patterns := make([]*regexp.Regexp, len(defaultPatterns))
	for i, pattern := range defaultPatterns {
		patterns[i] = regexp.MustCompile(pattern)
	}

	return &Redactor{
		patterns:    patterns,
		replacement: "[REDACTED]",
	}
}

// RedactString replaces every pattern match in input with the replacement
// token.
func (r *Redactor) RedactString(input string) string {
	result := input
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}
