// Package htmlsanitize strips HTML from user-supplied text fields.
// Display names and department descriptions are rendered by an admin UI,
// so markup is never preserved.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Plain removes all HTML elements and attributes from the input and
// unescapes the remaining entities, leaving plain text.
func Plain(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(s)))
}
