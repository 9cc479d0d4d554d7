// Package phone normalizes Indonesian WhatsApp numbers.
package phone

import (
	"strings"
	"unicode"
)

const (
	CountryCode = "62"
	trunkPrefix = "0"

	minLength = 10
	maxLength = 15
)

// Normalize strips every non-digit and rewrites the number into 62xxxxxxxx form
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, trunkPrefix) {
		digits = CountryCode + digits[len(trunkPrefix):]
	}
	if !strings.HasPrefix(digits, CountryCode) && len(digits) > 9 {
		digits = CountryCode + digits
	}
	return digits
}

// IsValid reports whether the normalized number has 10-15 digits and starts with 62
func IsValid(raw string) bool {
	n := Normalize(raw)
	if len(n) < minLength || len(n) > maxLength {
		return false
	}
	if !strings.HasPrefix(n, CountryCode) {
		return false
	}
	for _, r := range n {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FormatForDisplay renders "+62 812-3456-7890"
func FormatForDisplay(raw string) string {
	n := Normalize(raw)
	if !strings.HasPrefix(n, CountryCode) {
		return raw
	}

	rest := n[len(CountryCode):]
	switch {
	case len(rest) >= 10:
		return "+" + CountryCode + " " + rest[:3] + "-" + rest[3:7] + "-" + rest[7:]
	case len(rest) >= 7:
		return "+" + CountryCode + " " + rest[:3] + "-" + rest[3:]
	default:
		return "+" + CountryCode + " " + rest
	}
}

// FromJID extracts the number from a WhatsApp JID (628xxx@c.us, 628xxx@s.whatsapp.net)
func FromJID(jid string) string {
	if i := strings.Index(jid, "@"); i >= 0 {
		jid = jid[:i]
	}
	return Normalize(jid)
}
