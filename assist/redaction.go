package assist

import (
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// Redactor scrubs credentials from text that leaves the pipeline. Provider
// error messages sometimes echo part or all of the key that was rejected.
type Redactor struct {
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor with common API key patterns plus the given
// literal secrets.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`sk-ant-[A-Za-z0-9_\-]{16,}`),
			regexp.MustCompile(`sk-[A-Za-z0-9_\-*]{16,}`),
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{16,}`),
			regexp.MustCompile(`(?i)(api[_-]?key|x-api-key)\s*[=:]\s*['"]?[A-Za-z0-9_\-]{16,}['"]?`),
		},
	}
	for _, s := range secrets {
		if s != "" {
			r.literals = append(r.literals, s)
		}
	}
	return r
}

// Redact returns s with secrets replaced by [REDACTED]. The bool reports
// whether anything was replaced.
func (r *Redactor) Redact(s string) (string, bool) {
	out := s
	for _, lit := range r.literals {
		out = strings.ReplaceAll(out, lit, redactedPlaceholder)
	}
	for _, p := range r.patterns {
		out = p.ReplaceAllString(out, redactedPlaceholder)
	}
	return out, out != s
}
