package backend

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/meddoc/pkg/formatting"
)

const (
	heuristicConfidence = 0.9
	heuristicRationale  = "Heuristic classification from document keywords; no model was consulted."

	summaryBase      = 0.7
	summaryIncrement = 0.03
	summaryCap       = 10
	summaryBullets   = 5
)

// Heuristic is the deterministic rule-table backend. Its output is a pure
// function of the input text.
type Heuristic struct{}

// NewHeuristic returns the rule-table backend.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Mode() Mode { return ModeHeuristic }

func (h *Heuristic) Classify(ctx context.Context, text string) (Classification, error) {
	lt := strings.ToLower(text)

	docType := ClinicalNote
	for _, r := range classifyRules {
		if r.match(lt) {
			docType = r.docType
			break
		}
	}

	return Classification{
		DocumentType: docType,
		Confidence:   heuristicConfidence,
		Rationale:    heuristicRationale,
		Evidence:     []string{},
	}, nil
}

func (h *Heuristic) ExtractCodes(ctx context.Context, text string, docType DocumentType) (CodeSet, error) {
	lt := strings.ToLower(text)
	codes := []CodeFinding{}

	for _, r := range codeRules {
		if r.unless != "" && containsCode(codes, r.unless) {
			continue
		}
		if !r.match(lt) {
			continue
		}
		f := r.finding
		f.Evidence = slices.Clone(r.finding.Evidence)
		codes = append(codes, f)
	}

	return CodeSet{Codes: codes}, nil
}

func (h *Heuristic) Summarize(ctx context.Context, text string, docType DocumentType, codes []CodeFinding) (Summary, error) {
	lt := strings.ToLower(text)
	bullets := []string{}
	citations := []string{}

	for _, a := range analytes {
		m := a.pattern.FindStringSubmatch(lt)
		if m == nil {
			continue
		}
		bullets = append(bullets, a.render(m[1]))
		citations = append(citations, fmt.Sprintf(a.citation, m[1]))
	}

	for _, r := range conditionRules {
		if r.match(lt) && !mentions(bullets, r.term) {
			bullets = append(bullets, r.bullet)
			citations = append(citations, r.citation)
		}
	}

	for _, r := range qualitativeRules {
		if r.match(lt) && !mentions(bullets, r.term) {
			bullets = append(bullets, r.bullet)
		}
	}

	if len(bullets) == 0 {
		bullets = append(bullets, normalBullet)
		citations = append(citations, "normal")
	}

	head := bullets[:min(len(bullets), summaryBullets)]
	summary := strings.Join(head, ". ") + "."

	return Summary{
		Summary:    summary,
		Bullets:    bullets,
		Citations:  citations,
		Confidence: formatting.Clamp01(summaryBase + summaryIncrement*float64(min(len(bullets), summaryCap))),
	}, nil
}

func (h *Heuristic) ValidateMedicalDocument(ctx context.Context, text string) (bool, error) {
	lt := strings.ToLower(text)

	medical := countMatches(lt, medicalKeywords)
	nonMedical := countMatches(lt, nonMedicalKeywords)

	if nonMedical >= nonMedicalThreshold && medical <= nonMedical {
		return false, nil
	}
	return true, nil
}

func (a analyte) render(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Sprintf(a.above, raw)
	}
	for _, b := range a.bands {
		if v < b.below {
			return fmt.Sprintf(b.format, raw)
		}
	}
	return fmt.Sprintf(a.above, raw)
}

func containsCode(codes []CodeFinding, code string) bool {
	return slices.ContainsFunc(codes, func(f CodeFinding) bool {
		return f.Code == code
	})
}

func mentions(bullets []string, term string) bool {
	return slices.ContainsFunc(bullets, func(b string) bool {
		return strings.Contains(strings.ToLower(b), term)
	})
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
