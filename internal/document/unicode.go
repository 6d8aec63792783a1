package document

import "strings"

// typography maps typographic characters models like to emit onto their plain-text forms
var typography = strings.NewReplacer(
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2011", "-", // non-breaking hyphen
	"\u2212", "-", // minus sign
	"\u2018", "'", // curly quotes
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2022", "-", // bullet
	"\u00d7", "x", // multiplication sign
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space
	"\u2026", "...",
	"\u200b", "", // zero-width space
	"\u200d", "", // zero-width joiner
)

// NormalizeUnicode replaces typographic characters with plain-text equivalents
func NormalizeUnicode(s string) string {
	return typography.Replace(s)
}
