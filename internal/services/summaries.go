package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BerylCAtieno/cheatsheet-api/internal/events"
	"github.com/BerylCAtieno/cheatsheet-api/internal/export"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/repository"
	"github.com/BerylCAtieno/cheatsheet-api/internal/storage"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type SummaryService interface {
	List(ctx context.Context, identity models.Identity) ([]models.SummaryRecord, error)
	Get(ctx context.Context, identity models.Identity, id string) (*models.SummaryRecord, error)
	Export(ctx context.Context, identity models.Identity, id, format string) (*File, error)
	ExportHistory(ctx context.Context, identity models.Identity) (*File, error)
	SourceDocument(ctx context.Context, identity models.Identity, id string) (*File, error)
	Subscribe(ctx context.Context, identity models.Identity) (<-chan events.SummaryEvent, error)
}

type summaryService struct {
	repo    repository.Repository
	archive storage.Archive
	broker  events.Broker
	logger  *utils.Logger
}

func NewSummaryService(repo repository.Repository, archive storage.Archive, broker events.Broker, logger *utils.Logger) SummaryService {
	return &summaryService{
		repo:    repo,
		archive: archive,
		broker:  broker,
		logger:  logger,
	}
}

func (s *summaryService) List(ctx context.Context, identity models.Identity) ([]models.SummaryRecord, error) {
	if identity.IsZero() {
		return []models.SummaryRecord{}, nil
	}

	records, err := s.repo.ListByOwner(ctx, identity)
	if err != nil {
		s.logger.Error("Failed to list summaries", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve summaries")
	}
	return records, nil
}

func (s *summaryService) Get(ctx context.Context, identity models.Identity, id string) (*models.SummaryRecord, error) {
	if identity.IsZero() {
		return nil, utils.NewNotFoundError("Summary not found")
	}

	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("Summary not found")
	}
	if err != nil {
		s.logger.Error("Failed to get summary", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve summary")
	}

	// Other owners' summaries are indistinguishable from missing ones.
	if !ownedBy(record, identity) {
		return nil, utils.NewNotFoundError("Summary not found")
	}

	return record, nil
}

func (s *summaryService) Export(ctx context.Context, identity models.Identity, id, format string) (*File, error) {
	if format == "" {
		format = export.FormatText
	}
	if format != export.FormatText && format != export.FormatPDF {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unsupported export format '%s'. Use txt or pdf", format))
	}

	record, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if format == export.FormatText {
		return &File{
			Name:        export.FileName(record.DocumentName, export.FormatText),
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(export.Text(record.Content)),
		}, nil
	}

	data, err := export.PDF(*record)
	if err != nil {
		s.logger.Error("Failed to render PDF", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to export summary")
	}
	return &File{
		Name:        export.FileName(record.DocumentName, export.FormatPDF),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func (s *summaryService) ExportHistory(ctx context.Context, identity models.Identity) (*File, error) {
	records, err := s.List(ctx, identity)
	if err != nil {
		return nil, err
	}

	data, err := export.HistoryXLSX(records)
	if err != nil {
		s.logger.Error("Failed to render XLSX", "error", err)
		return nil, utils.NewInternalError("Failed to export summaries")
	}

	return &File{
		Name:        "summaries.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

func (s *summaryService) SourceDocument(ctx context.Context, identity models.Identity, id string) (*File, error) {
	record, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if s.archive == nil || record.ArchiveKey == nil {
		return nil, utils.NewNotFoundError("Original document is not available")
	}

	data, err := s.archive.Download(ctx, *record.ArchiveKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, utils.NewNotFoundError("Original document is not available")
	}
	if err != nil {
		s.logger.Error("Failed to download archived document", "error", err, "key", *record.ArchiveKey)
		return nil, utils.NewInternalError("Failed to retrieve original document")
	}

	return &File{
		Name:        record.DocumentName,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func (s *summaryService) Subscribe(ctx context.Context, identity models.Identity) (<-chan events.SummaryEvent, error) {
	if identity.IsZero() {
		return nil, utils.NewBadRequestError("No identity to subscribe for")
	}
	if s.broker == nil {
		return nil, utils.NewInternalError("Change notifications are not available")
	}

	ch, err := s.broker.Subscribe(ctx, identity)
	if err != nil {
		s.logger.Error("Failed to subscribe", "error", err)
		return nil, utils.NewInternalError("Failed to subscribe to summaries")
	}
	return ch, nil
}

func ownedBy(record *models.SummaryRecord, identity models.Identity) bool {
	if identity.IsAuthenticated() {
		return record.UserID != nil && *record.UserID == identity.UserID
	}
	return record.AnonymousID != nil && *record.AnonymousID == identity.AnonymousID
}
