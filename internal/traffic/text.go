// Package traffic produces synthetic log volume for exercising log pipelines.
package traffic

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Words is the vocabulary generated text is drawn from
var Words = []string{
	"hello", "world", "test", "random", "text",
	"words", "generator", "python", "code", "sample",
}

// GenerateText returns exactly length bytes: prefix followed by random
// space-separated words, cut at length. Lengths count bytes, not runes; a
// prefix longer than length is cut back to a rune boundary and the gap is
// filled with words. r may be nil to use the global source.
func GenerateText(r *rand.Rand, length int, prefix string) string {
	if length <= 0 {
		return ""
	}
	if len(prefix) > length {
		cut := length
		for cut > 0 && !utf8.RuneStart(prefix[cut]) {
			cut--
		}
		prefix = prefix[:cut]
	}
	if len(prefix) == length {
		return prefix
	}

	var b strings.Builder
	b.Grow(length + 16)
	b.WriteString(prefix)
	for b.Len() < length {
		b.WriteString(Words[intN(r, len(Words))])
		b.WriteByte(' ')
	}
	return b.String()[:length]
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
