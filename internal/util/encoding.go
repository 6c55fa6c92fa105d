package util

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacriticals is the Combining Diacritical Marks block (U+0300-U+036F).
var combiningDiacriticals = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

func Normalize(s string) string {
	return norm.NFKD.String(s)
}

// StripAccents decomposes s (NFKD) and drops the combining diacritical marks,
// so "Café" becomes "Cafe".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(combiningDiacriticals)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return Normalize(s)
	}
	return out
}
