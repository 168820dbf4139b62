package consolidate

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

func digits(s string) string { return nonDigit.ReplaceAllString(s, "") }

// NormalizePhone reduces a raw contact number to its last-10-digit join key.
// Inputs arrive as float artifacts ("9876543210.0"), with "+91" prefixes,
// spaces or dashes; anything shorter than 10 digits is kept as-is.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	d := digits(s)
	if len(d) > 10 {
		return d[len(d)-10:]
	}
	return d
}
