package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
	"github.com/JaimeStill/meddoc/internal/pipeline"
)

type harness struct {
	spy     *spyBackend
	docs    *fakeDocuments
	results *fakeResults
	reg     *prometheus.Registry
	sys     pipeline.System
}

func newHarness() *harness {
	h := &harness{
		spy:     newSpy(),
		docs:    newFakeDocuments(),
		results: newFakeResults(),
		reg:     prometheus.NewRegistry(),
	}
	h.sys = pipeline.New(h.spy, h.docs, h.results, pipeline.NewMetrics(h.reg), discardLogger())
	return h
}

func (h *harness) outcomes(t *testing.T) map[string]float64 {
	t.Helper()

	families, err := h.reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != "meddoc_pipeline_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					out[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	return out
}

func TestRunClassifies(t *testing.T) {
	h := newHarness()

	result, err := h.sys.Run(context.Background(), cbcText, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Classification.DocumentType != backend.CompleteBloodCount {
		t.Errorf("DocumentType = %q, want %q", result.Classification.DocumentType, backend.CompleteBloodCount)
	}
	if h.spy.count("classify") != 1 {
		t.Errorf("classify calls = %d, want 1", h.spy.count("classify"))
	}
	if len(result.Codes.Codes) == 0 || result.Codes.Codes[0].Code != "D72.829" {
		t.Errorf("codes = %+v, want D72.829 first", result.Codes.Codes)
	}
	if result.Backend != backend.ModeHeuristic {
		t.Errorf("Backend = %q, want %q", result.Backend, backend.ModeHeuristic)
	}
	if h.results.len() != 0 {
		t.Errorf("Run persisted %d results, want 0", h.results.len())
	}
	if got := h.outcomes(t)["completed"]; got != 1 {
		t.Errorf("completed outcomes = %v, want 1", got)
	}
}

func TestRunHintSkipsClassification(t *testing.T) {
	h := newHarness()

	result, err := h.sys.Run(context.Background(), cbcText, "  X-RAY ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if h.spy.count("classify") != 0 {
		t.Errorf("classify calls = %d, want 0", h.spy.count("classify"))
	}

	c := result.Classification
	if c.DocumentType != backend.XRay {
		t.Errorf("DocumentType = %q, want %q", c.DocumentType, backend.XRay)
	}
	if c.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", c.Confidence)
	}
	if c.Rationale != pipeline.HintRationale {
		t.Errorf("Rationale = %q, want %q", c.Rationale, pipeline.HintRationale)
	}
	if c.Evidence == nil || len(c.Evidence) != 0 {
		t.Errorf("Evidence = %v, want empty slice", c.Evidence)
	}
}

func TestRunInvalidHint(t *testing.T) {
	h := newHarness()

	tests := []string{"x-ray", "MRI", "BLOOD"}
	for _, hint := range tests {
		t.Run(hint, func(t *testing.T) {
			_, err := h.sys.Run(context.Background(), cbcText, hint)
			if !errors.Is(err, pipeline.ErrInvalidHint) {
				t.Errorf("error = %v, want ErrInvalidHint", err)
			}
		})
	}

	if h.spy.count("classify") != 0 || h.spy.count("codes") != 0 {
		t.Error("stages ran after an invalid hint")
	}
}

func TestRunRejected(t *testing.T) {
	h := newHarness()
	h.spy.rejected = true

	_, err := h.sys.Run(context.Background(), "Senior engineer resume", "")
	if !errors.Is(err, pipeline.ErrValidationRejected) {
		t.Fatalf("error = %v, want ErrValidationRejected", err)
	}
	if h.spy.count("classify") != 0 {
		t.Error("classify ran after rejection")
	}
	if got := h.outcomes(t)["rejected"]; got != 1 {
		t.Errorf("rejected outcomes = %v, want 1", got)
	}
}

func TestRunValidationErrorPasses(t *testing.T) {
	h := newHarness()
	h.spy.validateErr = errors.New("timeout")

	if _, err := h.sys.Run(context.Background(), cbcText, ""); err != nil {
		t.Fatalf("Run: %v, want validation error treated as pass", err)
	}
}

func TestRunStageFailure(t *testing.T) {
	h := newHarness()
	h.spy.classifyErr = fmt.Errorf("%w: connection refused", backend.ErrBackendUnavailable)

	_, err := h.sys.Run(context.Background(), cbcText, "")

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %v, want *StageError", err)
	}
	if stageErr.Stage != pipeline.StageClassify {
		t.Errorf("Stage = %q, want %q", stageErr.Stage, pipeline.StageClassify)
	}
	if stageErr.DocumentID != uuid.Nil {
		t.Errorf("DocumentID = %s, want nil for stateless run", stageErr.DocumentID)
	}
	if got := pipeline.MapHTTPStatus(err); got != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", got, http.StatusBadGateway)
	}
}

func TestProcessPersists(t *testing.T) {
	h := newHarness()
	id := h.docs.add(cbcText)

	result, err := h.sys.Process(context.Background(), id, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	saved, ok := h.results.saved[id]
	if !ok {
		t.Fatal("result not persisted")
	}
	if saved.Backend != string(backend.ModeHeuristic) {
		t.Errorf("saved backend = %q, want heuristic", saved.Backend)
	}

	var payload pipeline.Result
	if err := json.Unmarshal(saved.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Classification.DocumentType != result.Classification.DocumentType {
		t.Errorf("payload type = %q, want %q", payload.Classification.DocumentType, result.Classification.DocumentType)
	}
	if got := h.outcomes(t)["persisted"]; got != 1 {
		t.Errorf("persisted outcomes = %v, want 1", got)
	}
}

func TestProcessNotFound(t *testing.T) {
	h := newHarness()

	_, err := h.sys.Process(context.Background(), uuid.New(), "")
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("error = %v, want documents.ErrNotFound", err)
	}
	if got := pipeline.MapHTTPStatus(err); got != http.StatusNotFound {
		t.Errorf("status = %d, want %d", got, http.StatusNotFound)
	}
}

func TestProcessStageFailureWritesNothing(t *testing.T) {
	h := newHarness()
	h.spy.codesErr = fmt.Errorf("%w: deadline exceeded", backend.ErrBackendUnavailable)
	id := h.docs.add(cbcText)

	_, err := h.sys.Process(context.Background(), id, "COMPLETE BLOOD COUNT")

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %v, want *StageError", err)
	}
	if stageErr.Stage != pipeline.StageCodes {
		t.Errorf("Stage = %q, want %q", stageErr.Stage, pipeline.StageCodes)
	}
	if stageErr.DocumentID != id {
		t.Errorf("DocumentID = %s, want %s", stageErr.DocumentID, id)
	}
	if !errors.Is(err, pipeline.ErrPipelineFailed) {
		t.Error("errors.Is(err, ErrPipelineFailed) = false")
	}
	if h.spy.count("summarize") != 0 {
		t.Error("summarize ran after codes failed")
	}
	if h.results.len() != 0 {
		t.Errorf("results saved = %d, want 0", h.results.len())
	}
	if got := pipeline.MapHTTPStatus(err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestProcessPersistFailure(t *testing.T) {
	h := newHarness()
	h.results.saveErr = errors.New("db unavailable")
	id := h.docs.add(cbcText)

	_, err := h.sys.Process(context.Background(), id, "")

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StagePersist {
		t.Fatalf("error = %v, want persist StageError", err)
	}

	want := "Document saved but pipeline failed: persist: db unavailable"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestIngest(t *testing.T) {
	cmd := documents.CreateCommand{
		Data:        []byte(cbcText),
		Filename:    "cbc.txt",
		ContentType: documents.ContentTypeText,
		Text:        cbcText,
	}

	t.Run("stores without running", func(t *testing.T) {
		h := newHarness()

		ing, err := h.sys.Ingest(context.Background(), pipeline.IngestCommand{Document: cmd})
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if ing.Processed || ing.Result != nil {
			t.Errorf("ingestion = %+v, want unprocessed", ing)
		}
		if h.spy.count("validate") != 0 {
			t.Error("validation ran without run_pipeline")
		}
		if h.docs.len() != 1 {
			t.Errorf("documents = %d, want 1", h.docs.len())
		}
	})

	t.Run("stores and processes", func(t *testing.T) {
		h := newHarness()

		ing, err := h.sys.Ingest(context.Background(), pipeline.IngestCommand{
			Document: cmd,
			Run:      true,
			Hint:     "COMPLETE BLOOD COUNT",
		})
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if !ing.Processed || ing.Result == nil {
			t.Fatalf("ingestion = %+v, want processed result", ing)
		}
		if ing.Document.Status != documents.StatusProcessed {
			t.Errorf("Status = %q, want %q", ing.Document.Status, documents.StatusProcessed)
		}
		if h.spy.count("validate") != 1 {
			t.Errorf("validate calls = %d, want 1", h.spy.count("validate"))
		}
		if h.results.len() != 1 {
			t.Errorf("results = %d, want 1", h.results.len())
		}
	})

	t.Run("rejection stores nothing", func(t *testing.T) {
		h := newHarness()
		h.spy.rejected = true

		_, err := h.sys.Ingest(context.Background(), pipeline.IngestCommand{Document: cmd, Run: true})
		if !errors.Is(err, pipeline.ErrValidationRejected) {
			t.Fatalf("error = %v, want ErrValidationRejected", err)
		}
		if h.docs.len() != 0 {
			t.Errorf("documents = %d, want 0", h.docs.len())
		}
	})

	t.Run("invalid hint stores nothing", func(t *testing.T) {
		h := newHarness()

		_, err := h.sys.Ingest(context.Background(), pipeline.IngestCommand{Document: cmd, Run: true, Hint: "MRI"})
		if !errors.Is(err, pipeline.ErrInvalidHint) {
			t.Fatalf("error = %v, want ErrInvalidHint", err)
		}
		if h.docs.len() != 0 {
			t.Errorf("documents = %d, want 0", h.docs.len())
		}
	})
}

func TestSummaryConfidenceRenormalized(t *testing.T) {
	h := newHarness()

	result, err := h.sys.Run(context.Background(), cbcText, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	c := result.Summary.Confidence
	if c < 0 || c > 1 || math.IsNaN(c) {
		t.Errorf("summary confidence = %v, want within [0,1]", c)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejected", pipeline.ErrValidationRejected, http.StatusBadRequest},
		{"invalid hint", fmt.Errorf("%w; allowed: CT", pipeline.ErrInvalidHint), http.StatusBadRequest},
		{"invalid request", pipeline.ErrInvalidRequest, http.StatusBadRequest},
		{"document not found", documents.ErrNotFound, http.StatusNotFound},
		{"file too large", documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"backend unavailable", backend.ErrBackendUnavailable, http.StatusBadGateway},
		{
			"stored stage failure",
			&pipeline.StageError{DocumentID: uuid.New(), Stage: pipeline.StageSummarize, Err: backend.ErrBackendUnavailable},
			http.StatusInternalServerError,
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pipeline.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
