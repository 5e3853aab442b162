package dedup

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
)

// normalizeTitle strips punctuation and collapses whitespace so that
// headlines differing only in quoting or dash style still score 1.0.
// Case is preserved.
func normalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ratcliffObershelp is a strutil.StringMetric that scores two strings
// the way Python's difflib SequenceMatcher ratio does: twice the total
// matched length over the combined length. strutil ships no
// Ratcliff/Obershelp metric of its own, so the recursive
// longest-common-substring decomposition lives here.
type ratcliffObershelp struct{}

func (ratcliffObershelp) Compare(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchedRunes(ra, rb)) / float64(total)
}

// matchedRunes sums the matching blocks: the longest common substring,
// then recursively the pieces on either side of it.
func matchedRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchedRunes(a[:ai], b[:bi]) +
		matchedRunes(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
		clear(cur)
	}
	return ai, bi, size
}

// titleSimilarity returns a symmetric sequence-alignment ratio in [0,1]
// between two normalized titles. Identical titles score exactly 1.0.
func titleSimilarity(metric strutil.StringMetric, a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == nb {
		return 1.0
	}
	return strutil.Similarity(na, nb, metric)
}
