// Package templating substitutes {{key}} placeholders in notification
// subject and body strings.
package templating

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{(.+?)\}\}`)

// Process replaces every {{key}} placeholder in content with the matching
// value from data. Keys are trimmed and matched case-insensitively.
// Unmatched placeholders pass through unchanged, and replacement values are
// never re-scanned for placeholders.
func Process(content string, data map[string]string) string {
	if content == "" || len(data) == 0 {
		return content
	}

	lookup := make(map[string]string, len(data))
	for k, v := range data {
		lookup[strings.ToLower(strings.TrimSpace(k))] = v
	}

	return placeholderRe.ReplaceAllStringFunc(content, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := lookup[strings.ToLower(key)]; ok {
			return v
		}
		return match
	})
}
