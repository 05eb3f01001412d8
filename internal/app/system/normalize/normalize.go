// Package normalize provides helper functions for consistent string normalization
// across the application. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import "strings"

// Username normalizes a username by trimming whitespace and converting to
// lowercase. This is the canonical form for storage and comparison, for both
// login accounts and usernames arriving in agent payloads.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role normalizes a role value by trimming whitespace and converting to
// lowercase. Agents and older dashboard builds send "ADMIN"/"VIEWER".
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Domain normalizes a website/host value by trimming whitespace and
// converting to lowercase.
func Domain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name normalizes a display name by trimming whitespace.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
