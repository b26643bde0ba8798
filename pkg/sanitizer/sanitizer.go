package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all markup from user supplied free text and trims it.
// Entities produced by the policy are unescaped so stored text stays plain.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Optional is Text for nullable fields; nil stays nil.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	return &clean
}
