package utils

import (
	"strings"
)

// TrimOrEmpty normalizes user input.
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StatusLabel turns "loan_officer" or "APPROVED" into "Loan Officer" / "Approved".
func StatusLabel(status string) string {
	status = NormalizeSpace(strings.ReplaceAll(strings.ToLower(status), "_", " "))
	if status == "" {
		return "Unknown"
	}
	words := strings.Split(status, " ")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Initials is used by the console views where an avatar would be.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(w[:1]))
		if b.Len() == 2 {
			break
		}
	}
	return b.String()
}
