package health

import (
	"regexp"
	"strings"
)

// redactRules run in order; URL patterns come first so their path portion
// is not partially matched by the path rules.
var redactRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?:https?|nats|wss?)://[^\s]+`), "[URL]"},
	{regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`), "[PATH]"},
	{regexp.MustCompile(`[A-Z]:\\[^:\s]+`), "[PATH]"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`), "[IP]"},
	{regexp.MustCompile(`:\d{2,5}\b`), "[PORT]"},
}

var credentialRule = regexp.MustCompile(
	`(?i)(password|token|key|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)

var credentialHints = []string{"password", "token", "key", "secret", "credential"}

// Redact strips endpoints, filesystem paths, addresses, and credential
// assignments from an error message so it is safe to expose on a health
// endpoint.
func Redact(message string) string {
	if message == "" {
		return ""
	}

	for _, rule := range redactRules {
		message = rule.pattern.ReplaceAllString(message, rule.replacement)
	}

	lower := strings.ToLower(message)
	for _, hint := range credentialHints {
		if strings.Contains(lower, hint) {
			return credentialRule.ReplaceAllString(message, "[REDACTED]")
		}
	}
	return message
}
