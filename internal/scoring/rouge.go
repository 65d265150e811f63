package scoring

import (
	"regexp"
	"strings"

	porterstemmer "github.com/reiver/go-porterstemmer"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Tokens this short are compared as is.
const minStemLen = 4

type Rouge struct {
	Rouge1 float64
	Rouge2 float64
	RougeL float64
}

// ComputeRouge returns ROUGE-1, ROUGE-2 and ROUGE-L F-measures in [0, 1].
func ComputeRouge(system string, reference string) Rouge {
	sys := rougeTokens(system)
	ref := rougeTokens(reference)

	return Rouge{
		Rouge1: ngramF1(sys, ref, 1),
		Rouge2: ngramF1(sys, ref, 2),
		RougeL: lcsF1(sys, ref),
	}
}

// rougeTokens lowercases, keeps alphanumeric runs only and Porter-stems
// tokens of minStemLen or more.
func rougeTokens(text string) []string {
	tokens := strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(text), " "))
	for i, tok := range tokens {
		if len(tok) >= minStemLen {
			tokens[i] = porterstemmer.StemString(tok)
		}
	}

	return tokens
}

func ngramF1(sys []string, ref []string, n int) float64 {
	sysCounts := ngramCounts(sys, n)
	refCounts := ngramCounts(ref, n)

	sysTotal := max(len(sys)-n+1, 0)
	refTotal := max(len(ref)-n+1, 0)

	overlap := 0
	for gram, count := range sysCounts {
		overlap += min(count, refCounts[gram])
	}

	return fMeasure(overlap, sysTotal, refTotal)
}

func lcsF1(sys []string, ref []string) float64 {
	if len(sys) == 0 || len(ref) == 0 {
		return 0
	}

	prev := make([]int, len(ref)+1)
	curr := make([]int, len(ref)+1)

	for i := 1; i <= len(sys); i++ {
		for j := 1; j <= len(ref); j++ {
			if sys[i-1] == ref[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return fMeasure(prev[len(ref)], len(sys), len(ref))
}

func fMeasure(overlap int, sysTotal int, refTotal int) float64 {
	if overlap == 0 || sysTotal == 0 || refTotal == 0 {
		return 0
	}

	precision := float64(overlap) / float64(sysTotal)
	recall := float64(overlap) / float64(refTotal)

	return 2 * precision * recall / (precision + recall)
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}

	return counts
}
