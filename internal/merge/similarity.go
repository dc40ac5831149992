// Package merge consolidates per-page records that describe the same person
// into single roster entries, using fuzzy name matching to pair them up.
package merge

import (
	"strings"
	"unicode/utf8"
)

const similarityThreshold = 0.80

// IsSimilar reports whether two extracted names plausibly refer to the same
// person. Exact matches and prefix matches (a partial name inside a full
// one) short-circuit; otherwise the Ratcliff/Obershelp ratio must clear the
// threshold. Prefix matching requires 4+ characters on both sides so "ALI"
// does not swallow "ALICE".
func IsSimilar(n1, n2 string) bool {
	if n1 == "" || n2 == "" {
		return false
	}
	if n1 == n2 {
		return true
	}
	if utf8.RuneCountInString(n1) > 3 && utf8.RuneCountInString(n2) > 3 {
		if strings.HasPrefix(n1, n2) || strings.HasPrefix(n2, n1) {
			return true
		}
	}
	return Ratio(n1, n2) > similarityThreshold
}

// Ratio computes the Ratcliff/Obershelp similarity of two strings: twice
// the total length of all matching blocks divided by the combined length.
// Identical strings score 1.0, fully distinct strings 0.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchTotal(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchTotal sums the sizes of all matching blocks inside the given window
// by finding the longest common block and recursing on both sides of it.
func matchTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, k := longestMatch(a, b, alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return k +
		matchTotal(a, b, alo, i, blo, j) +
		matchTotal(a, b, i+k, ahi, j+k, bhi)
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] within the
// window, preferring the earliest position in a, then in b, on ties.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
