package models

import (
	"strings"
	"time"
)

type DocumentType string

const (
	DocumentTypeGeneral   DocumentType = "general"
	DocumentTypeAcademic  DocumentType = "academic"
	DocumentTypeLegal     DocumentType = "legal"
	DocumentTypeMarketing DocumentType = "marketing"
)

// ParseDocumentType maps a form value to a DocumentType. Empty and unknown
// values select the general prompt.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case DocumentTypeAcademic:
		return DocumentTypeAcademic
	case DocumentTypeLegal:
		return DocumentTypeLegal
	case DocumentTypeMarketing:
		return DocumentTypeMarketing
	default:
		return DocumentTypeGeneral
	}
}

// UploadedDocument lives for the duration of one request.
type UploadedDocument struct {
	Data      []byte
	MediaType string
	FileName  string
}

type KeyTerm struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
}

type MainConcept struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type NumericalFinding struct {
	Value        string `json:"value"`
	Context      string `json:"context"`
	Significance string `json:"significance"`
}

// AnalysisResult is the cheat sheet returned to the caller and persisted as
// the summary content.
type AnalysisResult struct {
	Summary       string             `json:"summary"`
	KeyTerms      []KeyTerm          `json:"keyTerms"`
	MainConcepts  []MainConcept      `json:"mainConcepts"`
	KeyPoints     []string           `json:"keyPoints"`
	NumericalData []NumericalFinding `json:"numericalData"`
}

func EmptyAnalysisResult() AnalysisResult {
	return AnalysisResult{}.WithDefaults()
}

// WithDefaults replaces nil sequences with empty ones so every key encodes
// as a JSON array.
func (r AnalysisResult) WithDefaults() AnalysisResult {
	if r.KeyTerms == nil {
		r.KeyTerms = []KeyTerm{}
	}
	if r.MainConcepts == nil {
		r.MainConcepts = []MainConcept{}
	}
	if r.KeyPoints == nil {
		r.KeyPoints = []string{}
	}
	if r.NumericalData == nil {
		r.NumericalData = []NumericalFinding{}
	}
	return r
}

// ErrorEnvelope is the failure body. It has the same keys as a successful
// response plus "error".
type ErrorEnvelope struct {
	Error string `json:"error"`
	AnalysisResult
}

func NewErrorEnvelope(message string) ErrorEnvelope {
	return ErrorEnvelope{
		Error:          message,
		AnalysisResult: EmptyAnalysisResult(),
	}
}

// SummaryRecord is one persisted analysis. Exactly one of UserID and
// AnonymousID is set.
type SummaryRecord struct {
	ID           string         `json:"id" db:"id"`
	UserID       *string        `json:"user_id,omitempty" db:"user_id"`
	AnonymousID  *string        `json:"anonymous_id,omitempty" db:"anonymous_id"`
	DocumentName string         `json:"document_name" db:"document_name"`
	DocumentType DocumentType   `json:"document_type" db:"document_type"`
	ArchiveKey   *string        `json:"archive_key,omitempty" db:"archive_key"`
	Content      AnalysisResult `json:"content" db:"-"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Identity is the resolved owner of a request: an authenticated user or an
// anonymous browser.
type Identity struct {
	UserID      string
	AnonymousID string
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

func (i Identity) IsZero() bool {
	return i.UserID == "" && i.AnonymousID == ""
}

// Owner is the key summaries are filed under.
func (i Identity) Owner() string {
	if i.UserID != "" {
		return i.UserID
	}
	return i.AnonymousID
}
