package pipeline

import (
	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageClassify  Stage = "classify"
	StageCodes     Stage = "codes"
	StageSummarize Stage = "summarize"
	StagePersist   Stage = "persist"
)

// Outcome is the terminal state of a pipeline run.
type Outcome string

const (
	OutcomePersisted Outcome = "persisted"
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// HintRationale is the rationale recorded when a caller-supplied document
// type replaces classification.
const HintRationale = "User selected document type in UI; classification skipped."

// Result is the combined output of a pipeline run. Error carries any parser
// markers reported by the stages.
type Result struct {
	Classification backend.Classification `json:"classification"`
	Codes          backend.CodeSet        `json:"codes"`
	Summary        backend.Summary        `json:"summary"`
	Backend        backend.Mode           `json:"backend"`
	Error          string                 `json:"error,omitempty"`
}

// IngestCommand is an upload to store and, when Run is set, analyze.
type IngestCommand struct {
	Document documents.CreateCommand
	Run      bool
	Hint     string
}

// Ingestion reports the stored document and the pipeline result, if one ran.
type Ingestion struct {
	Document  *documents.Document `json:"document"`
	Processed bool                `json:"processed"`
	Result    *Result             `json:"result"`
}
