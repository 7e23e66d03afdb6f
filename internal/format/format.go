// Package format performs the text substitution behind workspace labels.
// Rendering never fails: labels are cosmetic and must not stall the event
// loop, so unknown placeholders pass through literally instead of erroring.
package format

import (
	"strconv"
	"strings"
)

// maxPasses bounds template re-expansion. Client templates may reference
// other templates ({client} inside {client_dup}), which needs a second
// pass; the cap keeps self-referential configurations from looping.
const maxPasses = 3

// Render substitutes {name} placeholders from vars into tmpl. Placeholders
// without a binding are left verbatim. Substituted values are re-scanned up
// to maxPasses times so nested templates settle.
func Render(tmpl string, vars map[string]string) string {
	result := tmpl
	for i := 0; i < maxPasses; i++ {
		if !strings.ContainsRune(result, '{') {
			return result
		}
		expanded := renderOnce(result, vars)
		if expanded == result {
			return result
		}
		result = expanded
	}
	return result
}

func renderOnce(tmpl string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			b.WriteString(rest)
			return b.String()
		}
		close += open
		name := rest[open+1 : close]
		value, ok := vars[name]
		b.WriteString(rest[:open])
		if ok {
			b.WriteString(value)
		} else {
			b.WriteString(rest[open : close+1])
		}
		rest = rest[close+1:]
	}
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'-': '⁻',
}

// Superscript renders an integer using Unicode superscript digits, for the
// {counter_sup} placeholder family.
func Superscript(n int) string {
	plain := strconv.Itoa(n)
	out := make([]rune, 0, len(plain))
	for _, r := range plain {
		if sup, ok := superscripts[r]; ok {
			out = append(out, sup)
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
