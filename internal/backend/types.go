package backend

import (
	"encoding/json"
	"slices"
	"strings"
)

// DocumentType is one of the closed set of medical document categories.
type DocumentType string

// Valid document types.
const (
	CompleteBloodCount  DocumentType = "COMPLETE BLOOD COUNT"
	BasicMetabolicPanel DocumentType = "BASIC METABOLIC PANEL"
	XRay                DocumentType = "X-RAY"
	CT                  DocumentType = "CT"
	ClinicalNote        DocumentType = "CLINICAL NOTE"
)

var documentTypes = []DocumentType{
	CompleteBloodCount,
	BasicMetabolicPanel,
	XRay,
	CT,
	ClinicalNote,
}

// DocumentTypes returns the list of valid document types.
func DocumentTypes() []DocumentType {
	return documentTypes
}

// UnmarshalJSON validates that the decoded string is a known document type.
func (t *DocumentType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseDocumentType(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseDocumentType validates a string as a known document type after trimming
// surrounding whitespace. Matching is exact; returns ErrInvalidDocumentType otherwise.
func ParseDocumentType(s string) (DocumentType, error) {
	v := DocumentType(strings.TrimSpace(s))
	if !slices.Contains(documentTypes, v) {
		return "", ErrInvalidDocumentType
	}
	return v, nil
}

// Classification is the resolved document type with its supporting rationale.
type Classification struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"`
	Rationale    string       `json:"rationale"`
	Evidence     []string     `json:"evidence"`
	Error        string       `json:"error,omitempty"`
}

// CodeFinding is a single diagnostic code with the text that supports it.
type CodeFinding struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
}

// CodeSet preserves insertion order and permits duplicate codes.
type CodeSet struct {
	Codes []CodeFinding `json:"codes"`
	Error string        `json:"error,omitempty"`
}

// Summary is the clinical summary produced from a document and its codes.
type Summary struct {
	Summary    string   `json:"summary"`
	Bullets    []string `json:"bullets"`
	Citations  []string `json:"citations"`
	Confidence float64  `json:"confidence"`
	Error      string   `json:"error,omitempty"`
}
