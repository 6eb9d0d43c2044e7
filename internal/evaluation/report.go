package evaluation

import (
	"time"

	"github.com/JaimeStill/meddoc/internal/backend"
)

// Report is the outcome of one evaluation run. Corpus metrics are rounded to
// two decimals; per-item metrics are not.
type Report struct {
	Timestamp              time.Time    `json:"timestamp"`
	Backend                backend.Mode `json:"backend"`
	Mode                   Mode         `json:"mode"`
	Items                  int          `json:"items"`
	CodesPrecision         float64      `json:"codes_precision"`
	CodesRecall            float64      `json:"codes_recall"`
	CodesF1                float64      `json:"codes_f1"`
	SummaryCoverage        float64      `json:"summary_coverage"`
	ClassificationAccuracy *float64     `json:"classification_accuracy,omitempty"`
	Counts
	Details []ItemResult `json:"details"`
}

// ItemResult is the per-item breakdown of a report.
type ItemResult struct {
	Index          int                  `json:"index"`
	ExpectedType   backend.DocumentType `json:"expected_type"`
	PredictedType  backend.DocumentType `json:"predicted_type,omitempty"`
	ExpectedCodes  []string             `json:"expected_codes"`
	PredictedCodes []string             `json:"predicted_codes"`
	Summary        string               `json:"summary"`
	Precision      float64              `json:"precision"`
	Recall         float64              `json:"recall"`
	F1             float64              `json:"f1"`
	Coverage       float64              `json:"coverage"`
	Error          string               `json:"error,omitempty"`
	Counts
}

// reduce aggregates gathered item results into a report. Corpus precision,
// recall, and F1 are micro-averaged over summed counts; coverage is the mean
// of per-item coverage.
func reduce(items []ItemResult, mode Mode, be backend.Mode, now time.Time) *Report {
	r := &Report{
		Timestamp: now.UTC(),
		Backend:   be,
		Mode:      mode,
		Items:     len(items),
		Details:   items,
	}

	var coverage float64
	correct := 0
	for _, item := range items {
		r.Counts = r.Counts.Add(item.Counts)
		coverage += item.Coverage
		if item.PredictedType == item.ExpectedType {
			correct++
		}
	}

	r.CodesPrecision = round2(r.Counts.Precision())
	r.CodesRecall = round2(r.Counts.Recall())
	r.CodesF1 = round2(r.Counts.F1())
	if len(items) > 0 {
		r.SummaryCoverage = round2(coverage / float64(len(items)))
	}

	if mode == ModeClassify && len(items) > 0 {
		acc := round2(float64(correct) / float64(len(items)))
		r.ClassificationAccuracy = &acc
	}

	return r
}
