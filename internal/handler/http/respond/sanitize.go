package respond

import "regexp"

// maskers run in order. The Anthropic key pattern goes before the
// generic sk- pattern so the more specific prefix wins, and the generic
// pattern requires enough trailing characters that it never re-matches
// an already masked string.
var maskers = []struct {
	re   *regexp.Regexp
	mask string
}{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`://([^:]+):([^@]+)@`), "://$1:****@"},
}

// SanitizeError returns the error message with API keys and DSN
// passwords masked, for log lines that may end up in shared storage.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, m := range maskers {
		msg = m.re.ReplaceAllString(msg, m.mask)
	}
	return msg
}
