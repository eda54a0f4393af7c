// Package versekey orders chapter and verse numbers that mix plain integers
// with letter-suffixed values such as "12a". Values compare by their leading
// integer first and the trailing suffix second, so "2" < "10" and
// "12" < "12a" < "12b" < "13".
package versekey

import "strings"

// Key is the decomposed form of a chapter or verse number.
type Key struct {
	Number int
	Suffix string
}

// Parse splits a raw value into its leading integer and trailing suffix.
// A value with no leading digits parses as number 0 with the whole value as
// suffix, which sorts it before numbered entries of the same suffix ordering.
func Parse(raw string) Key {
	raw = strings.TrimSpace(raw)
	i := 0
	n := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		n = n*10 + int(raw[i]-'0')
		i++
	}
	return Key{Number: n, Suffix: strings.ToLower(raw[i:])}
}

// Compare returns -1, 0 or 1 ordering a before b.
func Compare(a, b string) int {
	ka, kb := Parse(a), Parse(b)
	if ka.Number != kb.Number {
		if ka.Number < kb.Number {
			return -1
		}
		return 1
	}
	return strings.Compare(ka.Suffix, kb.Suffix)
}

// CompareRef orders (chapter, verse) pairs: chapter first, then verse.
func CompareRef(chapterA, verseA, chapterB, verseB string) int {
	if c := Compare(chapterA, chapterB); c != 0 {
		return c
	}
	return Compare(verseA, verseB)
}
