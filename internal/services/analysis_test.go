package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/BerylCAtieno/cheatsheet-api/internal/analyzer"
	"github.com/BerylCAtieno/cheatsheet-api/internal/events"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:       "Revenue grew.",
		KeyTerms:      []models.KeyTerm{},
		MainConcepts:  []models.MainConcept{},
		KeyPoints:     []string{"Revenue grew 20%"},
		NumericalData: []models.NumericalFinding{{Value: "20%", Context: "Q1 2024 revenue growth", Significance: "Strong quarter"}},
	}
}

func textDoc(content string) models.UploadedDocument {
	return models.UploadedDocument{
		Data:      []byte(content),
		MediaType: "text/plain",
		FileName:  "report.txt",
	}
}

type pipeline struct {
	service  AnalysisService
	analyzer *fakeAnalyzer
	repo     *memoryRepo
	archive  *memoryArchive
	broker   *events.MemoryBroker
}

func newPipeline(t *testing.T, maxChars int) *pipeline {
	t.Helper()

	p := &pipeline{
		analyzer: &fakeAnalyzer{result: sampleResult()},
		repo:     newMemoryRepo(),
		archive:  newMemoryArchive(),
		broker:   events.NewMemoryBroker(),
	}
	t.Cleanup(func() { p.broker.Close() })

	persister := NewPersister(p.repo, newResolver(), p.archive, p.broker, utils.NopLogger())
	p.service = NewAnalysisService(p.analyzer, persister, maxChars, utils.NopLogger())
	return p
}

func appErr(t *testing.T, err error) *utils.AppError {
	t.Helper()
	var e *utils.AppError
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not an AppError", err)
	}
	return e
}

func TestAnalyzeStoresRecordForNewVisitor(t *testing.T) {
	p := newPipeline(t, 0)
	creds, w := newCreds("")

	result, err := p.service.Analyze(context.Background(), creds, textDoc("Revenue grew 20% in Q1 2024."), models.DocumentTypeMarketing)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.Summary != "Revenue grew." {
		t.Errorf("summary = %q", result.Summary)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	anonID := cookies[0].Value

	records := p.repo.all()
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.UserID != nil || rec.AnonymousID == nil || *rec.AnonymousID != anonID {
		t.Errorf("record owner = %v/%v, want anonymous %s", rec.UserID, rec.AnonymousID, anonID)
	}
	if rec.DocumentName != "report.txt" || rec.DocumentType != models.DocumentTypeMarketing {
		t.Errorf("record document = %q/%q", rec.DocumentName, rec.DocumentType)
	}
	if rec.Content.Summary != result.Summary {
		t.Errorf("stored content differs from response")
	}
	if rec.ArchiveKey == nil || string(p.archive.objects[*rec.ArchiveKey]) != "Revenue grew 20% in Q1 2024." {
		t.Errorf("document was not archived under %v", rec.ArchiveKey)
	}
}

func TestAnalyzeReusesAnonymousCookie(t *testing.T) {
	p := newPipeline(t, 0)
	creds, w := newCreds("anon-123")

	if _, err := p.service.Analyze(context.Background(), creds, textDoc("hello"), models.DocumentTypeGeneral); err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(w.Result().Cookies()) != 0 {
		t.Errorf("existing cookie should not be re-issued")
	}
	records := p.repo.all()
	if len(records) != 1 || *records[0].AnonymousID != "anon-123" {
		t.Errorf("records = %+v", records)
	}
}

func TestAnalyzePublishesEvent(t *testing.T) {
	p := newPipeline(t, 0)
	creds, _ := newCreds("anon-123")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := p.broker.Subscribe(ctx, models.Identity{AnonymousID: "anon-123"})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if _, err := p.service.Analyze(context.Background(), creds, textDoc("hello"), models.DocumentTypeGeneral); err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Type != events.TypeSummaryCreated || ev.Summary.DocumentName != "report.txt" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Errorf("no event published")
	}
}

func TestAnalyzePersistenceFailureDoesNotChangeResult(t *testing.T) {
	p := newPipeline(t, 0)
	p.repo.err = errBoom
	p.archive.err = errBoom

	creds, _ := newCreds("")
	result, err := p.service.Analyze(context.Background(), creds, textDoc("hello"), models.DocumentTypeGeneral)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.Summary != sampleResult().Summary {
		t.Errorf("result changed by persistence failure: %+v", result)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name        string
		doc         models.UploadedDocument
		analyzerErr error
		maxChars    int
		wantKind    utils.ErrorKind
		wantStatus  int
		wantMessage string
	}{
		{"empty file", models.UploadedDocument{MediaType: "text/plain", FileName: "x.txt"}, nil, 0, utils.KindNoFileProvided, http.StatusBadRequest, MessageNoFile},
		{"unsupported type", models.UploadedDocument{Data: []byte("x"), MediaType: "image/png", FileName: "x.png"}, nil, 0, utils.KindUnsupportedMediaType, http.StatusBadRequest, MessageUnsupportedType},
		{"extraction failure", models.UploadedDocument{Data: []byte("not a pdf"), MediaType: "application/pdf", FileName: "x.pdf"}, nil, 0, utils.KindExtractionFailed, http.StatusBadRequest, MessageProcessing},
		{"too long", textDoc(strings.Repeat("a", 11)), nil, 10, utils.KindDocumentTooLarge, http.StatusBadRequest, MessageTooLarge},
		{"model failure", textDoc("hello"), analyzer.ErrModelCallFailed, 0, utils.KindModelCallFailed, http.StatusBadRequest, MessageProcessing},
		{"empty response", textDoc("hello"), analyzer.ErrEmptyModelResponse, 0, utils.KindEmptyModelResponse, http.StatusBadRequest, MessageProcessing},
		{"malformed output", textDoc("hello"), analyzer.ErrMalformedModelOutput, 0, utils.KindMalformedModelOutput, http.StatusBadRequest, MessageProcessing},
		{"unexpected", textDoc("hello"), errBoom, 0, utils.KindUnexpected, http.StatusInternalServerError, MessageInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, tt.maxChars)
			p.analyzer.err = tt.analyzerErr
			creds, w := newCreds("")

			_, err := p.service.Analyze(context.Background(), creds, tt.doc, models.DocumentTypeGeneral)
			e := appErr(t, err)
			if e.Kind != tt.wantKind || e.StatusCode != tt.wantStatus || e.Message != tt.wantMessage {
				t.Errorf("got %s/%d/%q, want %s/%d/%q", e.Kind, e.StatusCode, e.Message, tt.wantKind, tt.wantStatus, tt.wantMessage)
			}

			if len(p.repo.all()) != 0 {
				t.Errorf("failed analysis must not be stored")
			}
			if len(w.Result().Cookies()) != 0 {
				t.Errorf("failed analysis must not set a cookie")
			}
		})
	}
}

func TestAnalyzeLengthLimitSkipsModel(t *testing.T) {
	p := newPipeline(t, 5)
	creds, _ := newCreds("")

	_, err := p.service.Analyze(context.Background(), creds, textDoc("héllo!"), models.DocumentTypeGeneral)
	if appErr(t, err).Kind != utils.KindDocumentTooLarge {
		t.Fatalf("error = %v", err)
	}
	if p.analyzer.calls != 0 {
		t.Errorf("model called %d times, want 0", p.analyzer.calls)
	}

	// the limit counts characters, not bytes
	if _, err := p.service.Analyze(context.Background(), creds, textDoc("héllo"), models.DocumentTypeGeneral); err != nil {
		t.Errorf("5-character document rejected: %v", err)
	}
}

func TestAnalyzeRecoversPanic(t *testing.T) {
	p := newPipeline(t, 0)
	p.analyzer.panic = true
	creds, _ := newCreds("")

	_, err := p.service.Analyze(context.Background(), creds, textDoc("hello"), models.DocumentTypeGeneral)
	e := appErr(t, err)
	if e.Kind != utils.KindUnexpected || e.StatusCode != http.StatusInternalServerError {
		t.Errorf("got %s/%d", e.Kind, e.StatusCode)
	}
}
