package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// CompareFold orders strings case-insensitively, breaking ties with a plain
// comparison so the order is total.
func CompareFold(a, b string) int {
	fold := cases.Fold()
	if c := strings.Compare(fold.String(a), fold.String(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// CompareNatural orders strings so that embedded digit runs compare by
// numeric value: "A2" < "A10". Letters compare case-insensitively.
func CompareNatural(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			if c := compareDigits(ra[si:i], rb[sj:j]); c != 0 {
				return c
			}
			continue
		}

		ca, cb := unicode.ToLower(ra[i]), unicode.ToLower(rb[j])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case len(ra)-i < len(rb)-j:
		return -1
	case len(ra)-i > len(rb)-j:
		return 1
	}
	return strings.Compare(a, b)
}

// compareDigits compares two digit runs by value.
func compareDigits(a, b []rune) int {
	ta, tb := trimZeros(a), trimZeros(b)
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	for k := range ta {
		if ta[k] != tb[k] {
			if ta[k] < tb[k] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func trimZeros(r []rune) []rune {
	for len(r) > 1 && r[0] == '0' {
		r = r[1:]
	}
	return r
}
