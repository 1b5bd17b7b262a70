// Package email normalizes customer addresses and derives a display name
// for accounts that sign up without one.
package email

import (
	"strings"
	"unicode"
)

// Normalize is the form addresses are stored and compared in.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// NormalizeAll normalizes a configured list, dropping blanks and repeats.
// Order is preserved.
func NormalizeAll(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := Normalize(a)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// DisplayName turns the local part into words: "asha.k+shop@x.in" becomes
// "Asha K". Tags after '+' are ignored; an unusable local part yields
// "Customer".
func DisplayName(address string) string {
	local := strings.TrimSpace(address)
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	if len(words) == 0 {
		return "Customer"
	}
	return strings.Join(words, " ")
}
