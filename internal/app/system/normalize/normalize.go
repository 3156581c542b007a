// Package normalize standardizes user-supplied identity fields before
// they reach the stores.
package normalize

import "strings"

// Username trims whitespace. Usernames stay case-sensitive as typed; the
// case-insensitive lookup column is folded separately at the store.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Name collapses runs of inner whitespace and trims the ends.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone strips spaces and hyphens from a telephone number.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
