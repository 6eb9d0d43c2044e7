package evaluation

import (
	"math"
	"regexp"
	"strings"
)

var nonCodeChars = regexp.MustCompile(`[^A-Z0-9]`)

// NormalizeCode uppercases a diagnostic code and strips everything outside [A-Z0-9],
// so "d72.829" and "D72829" compare equal.
func NormalizeCode(code string) string {
	return nonCodeChars.ReplaceAllString(strings.ToUpper(code), "")
}

// Counts holds true positive, false positive, and false negative tallies.
type Counts struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{TP: c.TP + o.TP, FP: c.FP + o.FP, FN: c.FN + o.FN}
}

// Precision is TP/(TP+FP), or 0 when nothing was predicted.
func (c Counts) Precision() float64 {
	return ratio(c.TP, c.TP+c.FP)
}

// Recall is TP/(TP+FN), or 0 when nothing was expected.
func (c Counts) Recall() float64 {
	return ratio(c.TP, c.TP+c.FN)
}

// F1 is the harmonic mean of precision and recall, or 0 when both are 0.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// ScoreCodes compares predicted and gold codes as sets of normalized codes.
// Duplicates and empty codes are ignored.
func ScoreCodes(predicted, gold []string) Counts {
	pset := codeSet(predicted)
	gset := codeSet(gold)

	var c Counts
	for code := range pset {
		if _, ok := gset[code]; ok {
			c.TP++
		} else {
			c.FP++
		}
	}
	for code := range gset {
		if _, ok := pset[code]; !ok {
			c.FN++
		}
	}
	return c
}

// Coverage is the share of facts found as case-insensitive substrings of summary.
// An empty fact list covers nothing.
func Coverage(summary string, facts []string) float64 {
	if len(facts) == 0 {
		return 0
	}

	s := strings.ToLower(summary)
	found := 0
	for _, f := range facts {
		if strings.Contains(s, strings.ToLower(f)) {
			found++
		}
	}
	return float64(found) / float64(len(facts))
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if n := NormalizeCode(c); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
