package validation

import "strings"

// PhoneDigits is the number of digits a registration phone number must carry.
const PhoneDigits = 10

// NormalizePhone strips every non-digit from s.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders partial input as XXX-XXX-XXXX while the user types.
// Digits past the tenth are dropped.
func FormatPhone(s string) string {
	d := NormalizePhone(s)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "-" + d[3:]
	default:
		if len(d) > PhoneDigits {
			d = d[:PhoneDigits]
		}
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	}
}
