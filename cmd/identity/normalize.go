package identity

import "strings"

// NormalizeEmail trims surrounding whitespace. Case is left to the user pool, which is
// configured case-insensitive or not independently of this service.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeCode trims a one-time code as typed by the user.
func NormalizeCode(s string) string {
	return strings.TrimSpace(s)
}
