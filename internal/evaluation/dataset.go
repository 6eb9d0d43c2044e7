package evaluation

import (
	"slices"

	"github.com/JaimeStill/meddoc/internal/backend"
)

// GoldItem is a reference document with its expected type, codes, and the
// facts a summary must mention.
type GoldItem struct {
	Text      string               `json:"text"`
	DocType   backend.DocumentType `json:"doc_type"`
	GoldCodes []string             `json:"gold_codes"`
	GoldFacts []string             `json:"gold_facts"`
}

var dataset = []GoldItem{
	{
		Text:      "CBC Report: WBC 13.2 x10^3/µL (elevated), Hgb 14.1 g/dL, Platelets 250 x10^3/µL.",
		DocType:   backend.CompleteBloodCount,
		GoldCodes: []string{"D72.829"},
		GoldFacts: []string{"leukocytosis", "hemoglobin normal", "platelets normal"},
	},
	{
		Text:      "BMP: Sodium 138, Potassium 3.0 (low), BUN 22, Creatinine 1.5.",
		DocType:   backend.BasicMetabolicPanel,
		GoldCodes: []string{"E87.6"},
		GoldFacts: []string{"hypokalemia", "renal function borderline"},
	},
}

// Dataset returns a copy of the built-in gold dataset.
func Dataset() []GoldItem {
	out := make([]GoldItem, len(dataset))
	for i, item := range dataset {
		item.GoldCodes = slices.Clone(item.GoldCodes)
		item.GoldFacts = slices.Clone(item.GoldFacts)
		out[i] = item
	}
	return out
}
