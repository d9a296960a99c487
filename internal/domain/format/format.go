// Package format renders times and file names for the generated pages.
package format

import (
	"strconv"
	"strings"
)

// Placeholder stands in for an absent time or an unranked position.
const Placeholder = "--"

// Time formats a millisecond value as MM:SS, or H:MM:SS when hours is set and
// the value reaches a full hour. Sub-second parts are truncated, never rounded.
// With hours unset the minutes field absorbs everything and may exceed 59.
// Negative input is not supported.
func Time(ms *int64, hours bool) string {
	if ms == nil {
		return Placeholder
	}
	return Millis(*ms, hours)
}

// Millis is Time for a value known to be present.
func Millis(ms int64, hours bool) string {
	secs := ms / 1000
	var h int64
	if hours {
		h = secs / 3600
		secs -= h * 3600
	}
	m := secs / 60
	s := secs % 60

	var b strings.Builder
	if h > 0 {
		b.WriteString(strconv.FormatInt(h, 10))
		b.WriteByte(':')
	}
	pad2(&b, m)
	b.WriteByte(':')
	pad2(&b, s)
	return b.String()
}

func pad2(b *strings.Builder, v int64) {
	if v < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(v, 10))
}

const (
	accented = "áčďéěíňóřšťůúýžľĺÁČĎÉĚÍŇÓŘŠŤŮÚÝŽĽĹ"
	plain    = "acdeeinorstuuyzllacdeeinorstuuyzll"
)

var asciiTable = func() map[rune]rune {
	from := []rune(accented)
	to := []rune(plain)
	m := make(map[rune]rune, len(from))
	for i, r := range from {
		m[r] = to[i]
	}
	return m
}()

// ASCIIName maps Czech and Slovak accented letters to their base letter and
// lower-cases the result. Anything outside that table, including other
// diacritics, is left as is.
func ASCIIName(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if base, ok := asciiTable[r]; ok {
			return base
		}
		return r
	}, name))
}
