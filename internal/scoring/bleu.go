package scoring

import (
	"math"
	"regexp"
	"strings"
)

const bleuMaxOrder = 4

var (
	punctRe  = regexp.MustCompile(`([\{-\~\[-\` + "`" + `\!-\&\(-\+\:-\@\/])`)
	periodRe = regexp.MustCompile(`([^0-9])([\.,])`)
	commaRe  = regexp.MustCompile(`([\.,])([^0-9])`)
	digitRe  = regexp.MustCompile(`([0-9])(-)`)
)

// ComputeBLEU returns sentence-pair BLEU in [0, 100] with exponential
// smoothing of zero n-gram matches.
func ComputeBLEU(system string, reference string) float64 {
	sys := bleuTokens(system)
	ref := bleuTokens(reference)

	if len(sys) == 0 {
		return 0
	}

	refCounts := make([]map[string]int, bleuMaxOrder+1)
	for n := 1; n <= bleuMaxOrder; n++ {
		refCounts[n] = ngramCounts(ref, n)
	}

	correct := make([]int, bleuMaxOrder+1)
	matched := false

	for n := 1; n <= bleuMaxOrder; n++ {
		if len(sys)-n+1 <= 0 {
			return 0
		}

		for gram, count := range ngramCounts(sys, n) {
			correct[n] += min(count, refCounts[n][gram])
		}
		matched = matched || correct[n] > 0
	}

	// Smoothing applies only once some n-gram matched.
	if !matched {
		return 0
	}

	smooth := 1.0
	logSum := 0.0

	for n := 1; n <= bleuMaxOrder; n++ {
		total := len(sys) - n + 1

		var precision float64
		if correct[n] == 0 {
			smooth *= 2
			precision = 100 / (smooth * float64(total))
		} else {
			precision = 100 * float64(correct[n]) / float64(total)
		}

		logSum += math.Log(precision)
	}

	brevity := 1.0
	if len(sys) < len(ref) {
		brevity = math.Exp(1 - float64(len(ref))/float64(len(sys)))
	}

	return brevity * math.Exp(logSum/bleuMaxOrder)
}

// bleuTokens splits punctuation from words the way the common 13a tokenizer does.
func bleuTokens(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	text = punctRe.ReplaceAllString(text, " $1 ")
	text = periodRe.ReplaceAllString(text, "$1 $2 ")
	text = commaRe.ReplaceAllString(text, " $1 $2")
	text = digitRe.ReplaceAllString(text, "$1 $2 ")

	return strings.Fields(text)
}
