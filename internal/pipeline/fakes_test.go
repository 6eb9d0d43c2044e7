package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
	"github.com/JaimeStill/meddoc/internal/results"
	"github.com/JaimeStill/meddoc/pkg/pagination"
)

const cbcText = `COMPLETE BLOOD COUNT
WBC 13.2 x10^3/uL (H)
Hemoglobin 14.1 g/dL
Platelets 250 x10^3/uL`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spyBackend wraps the heuristic backend, counting calls and injecting errors.
type spyBackend struct {
	inner backend.Backend

	mu          sync.Mutex
	calls       map[string]int
	classifyErr error
	codesErr    error
	validateErr error
	rejected    bool
}

func newSpy() *spyBackend {
	return &spyBackend{inner: backend.NewHeuristic(), calls: make(map[string]int)}
}

func (s *spyBackend) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *spyBackend) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
}

func (s *spyBackend) Mode() backend.Mode { return s.inner.Mode() }

func (s *spyBackend) Classify(ctx context.Context, text string) (backend.Classification, error) {
	s.record("classify")
	if s.classifyErr != nil {
		return backend.Classification{}, s.classifyErr
	}
	return s.inner.Classify(ctx, text)
}

func (s *spyBackend) ExtractCodes(ctx context.Context, text string, t backend.DocumentType) (backend.CodeSet, error) {
	s.record("codes")
	if s.codesErr != nil {
		return backend.CodeSet{}, s.codesErr
	}
	return s.inner.ExtractCodes(ctx, text, t)
}

func (s *spyBackend) Summarize(ctx context.Context, text string, t backend.DocumentType, codes []backend.CodeFinding) (backend.Summary, error) {
	s.record("summarize")
	return s.inner.Summarize(ctx, text, t, codes)
}

func (s *spyBackend) ValidateMedicalDocument(ctx context.Context, text string) (bool, error) {
	s.record("validate")
	if s.validateErr != nil {
		return false, s.validateErr
	}
	if s.rejected {
		return false, nil
	}
	return s.inner.ValidateMedicalDocument(ctx, text)
}

type fakeDocuments struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*documents.Document
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[uuid.UUID]*documents.Document)}
}

func (f *fakeDocuments) Handler(res results.System) *documents.Handler { return nil }

func (f *fakeDocuments) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocuments) Create(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	d := &documents.Document{
		ID:          uuid.New(),
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		SizeBytes:   int64(len(cmd.Data)),
		PageCount:   cmd.PageCount,
		StorageKey:  "documents/" + cmd.Filename,
		Text:        cmd.Text,
		Status:      documents.StatusPending,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	f.docs[d.ID] = d
	cp := *d
	return &cp, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeDocuments) add(text string) uuid.UUID {
	d, _ := f.Create(context.Background(), documents.CreateCommand{
		Data:     []byte(text),
		Filename: "doc.txt",
		Text:     text,
	})
	return d.ID
}

func (f *fakeDocuments) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeResults struct {
	mu      sync.Mutex
	saved   map[uuid.UUID]results.SaveCommand
	saveErr error
}

func newFakeResults() *fakeResults {
	return &fakeResults{saved: make(map[uuid.UUID]results.SaveCommand)}
}

func (f *fakeResults) Handler() *results.Handler { return nil }

func (f *fakeResults) Save(ctx context.Context, cmd results.SaveCommand) (*results.Record, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[cmd.DocumentID] = cmd
	now := time.Now()
	return &results.Record{
		DocumentID: cmd.DocumentID,
		Backend:    cmd.Backend,
		Payload:    cmd.Payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (f *fakeResults) Find(ctx context.Context, id uuid.UUID) (*results.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd, ok := f.saved[id]
	if !ok {
		return nil, results.ErrNotFound
	}
	return &results.Record{DocumentID: id, Backend: cmd.Backend, Payload: cmd.Payload}, nil
}

func (f *fakeResults) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, id)
	return nil
}

func (f *fakeResults) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}
