package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/BerylCAtieno/cheatsheet-api/internal/analyzer"
	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/extractor"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

const (
	MessageNoFile          = "No file provided"
	MessageUnsupportedType = "Unsupported file type. Only PDF and plain text files are allowed"
	MessageTooLarge        = "Document is too long to analyze"
	MessageProcessing      = "Failed to process document"
	MessageInternal        = "Internal server error"
)

var ErrDocumentTooLarge = errors.New("document too large")

type AnalysisService interface {
	Analyze(ctx context.Context, creds auth.Credentials, doc models.UploadedDocument, docType models.DocumentType) (*models.AnalysisResult, error)
}

type analysisService struct {
	analyzer         analyzer.Analyzer
	persister        Persister
	maxDocumentChars int
	logger           *utils.Logger
}

// NewAnalysisService wires the analysis pipeline. maxDocumentChars of 0
// disables the length check.
func NewAnalysisService(a analyzer.Analyzer, persister Persister, maxDocumentChars int, logger *utils.Logger) AnalysisService {
	return &analysisService{
		analyzer:         a,
		persister:        persister,
		maxDocumentChars: maxDocumentChars,
		logger:           logger,
	}
}

// Analyze extracts, analyzes and stores one document. Returned errors are
// *utils.AppError. A storage failure never fails the call.
func (s *analysisService) Analyze(ctx context.Context, creds auth.Credentials, doc models.UploadedDocument, docType models.DocumentType) (result *models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic during document analysis", "panic", r, "filename", doc.FileName)
			result = nil
			err = utils.NewAppError(utils.KindUnexpected, http.StatusInternalServerError, MessageInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	if len(doc.Data) == 0 {
		return nil, utils.NewAppError(utils.KindNoFileProvided, http.StatusBadRequest, MessageNoFile, nil)
	}

	text, err := extractor.Extract(doc.Data, doc.MediaType)
	if err != nil {
		s.logger.Warn("Failed to extract text", "error", err, "media_type", doc.MediaType, "filename", doc.FileName)
		return nil, toAppError(err)
	}

	if s.maxDocumentChars > 0 {
		if n := utf8.RuneCountInString(text); n > s.maxDocumentChars {
			s.logger.Warn("Document exceeds length limit", "chars", n, "limit", s.maxDocumentChars, "filename", doc.FileName)
			return nil, toAppError(fmt.Errorf("%w: %d characters", ErrDocumentTooLarge, n))
		}
	}

	s.logger.Info("Starting document analysis",
		"filename", doc.FileName,
		"document_type", docType,
		"text_length", len(text))

	result, err = s.analyzer.Analyze(ctx, docType, text)
	if err != nil {
		s.logger.Error("Failed to analyze document", "error", err, "filename", doc.FileName)
		return nil, toAppError(err)
	}

	s.persister.Persist(ctx, creds, doc, docType, *result)

	s.logger.Info("Document analyzed successfully",
		"filename", doc.FileName,
		"summary_length", len(result.Summary),
		"key_terms", len(result.KeyTerms))

	return result, nil
}

// toAppError maps pipeline failures onto client-facing errors.
func toAppError(err error) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, extractor.ErrUnsupportedMediaType):
		return utils.NewAppError(utils.KindUnsupportedMediaType, http.StatusBadRequest, MessageUnsupportedType, err)
	case errors.Is(err, ErrDocumentTooLarge):
		return utils.NewAppError(utils.KindDocumentTooLarge, http.StatusBadRequest, MessageTooLarge, err)
	case errors.Is(err, extractor.ErrExtractionFailed):
		return utils.NewAppError(utils.KindExtractionFailed, http.StatusBadRequest, MessageProcessing, err)
	case errors.Is(err, analyzer.ErrModelCallFailed):
		return utils.NewAppError(utils.KindModelCallFailed, http.StatusBadRequest, MessageProcessing, err)
	case errors.Is(err, analyzer.ErrEmptyModelResponse):
		return utils.NewAppError(utils.KindEmptyModelResponse, http.StatusBadRequest, MessageProcessing, err)
	case errors.Is(err, analyzer.ErrMalformedModelOutput):
		return utils.NewAppError(utils.KindMalformedModelOutput, http.StatusBadRequest, MessageProcessing, err)
	default:
		return utils.NewAppError(utils.KindUnexpected, http.StatusInternalServerError, MessageInternal, err)
	}
}
