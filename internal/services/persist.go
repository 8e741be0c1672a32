package services

import (
	"context"
	"time"

	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/events"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/repository"
	"github.com/BerylCAtieno/cheatsheet-api/internal/storage"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

const persistTimeout = 15 * time.Second

// Persister stores a finished analysis for its owner.
type Persister interface {
	// Persist never fails; problems are logged.
	Persist(ctx context.Context, creds auth.Credentials, doc models.UploadedDocument, docType models.DocumentType, result models.AnalysisResult)
}

type summaryPersister struct {
	repo       repository.Repository
	identities *auth.Resolver
	archive    storage.Archive
	broker     events.Broker
	logger     *utils.Logger
	now        func() time.Time
}

// NewPersister builds the persistence step. archive and broker may be nil.
func NewPersister(repo repository.Repository, identities *auth.Resolver, archive storage.Archive, broker events.Broker, logger *utils.Logger) Persister {
	return &summaryPersister{
		repo:       repo,
		identities: identities,
		archive:    archive,
		broker:     broker,
		logger:     logger,
		now:        time.Now,
	}
}

func (p *summaryPersister) Persist(ctx context.Context, creds auth.Credentials, doc models.UploadedDocument, docType models.DocumentType, result models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic while saving summary", "kind", utils.KindPersistenceFailed, "panic", r)
		}
	}()

	// Identity resolution may set a cookie, so it runs on the request context
	// before anything is written to the response.
	identity := p.identities.ResolveOrMint(ctx, creds)

	// Saving outlives a client disconnect.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	record := models.SummaryRecord{
		ID:           utils.GenerateID(),
		DocumentName: doc.FileName,
		DocumentType: docType,
		Content:      result.WithDefaults(),
		CreatedAt:    p.now().UTC(),
	}
	if identity.IsAuthenticated() {
		record.UserID = &identity.UserID
	} else {
		record.AnonymousID = &identity.AnonymousID
	}

	if p.archive != nil {
		key := storage.ArchiveKey(record.ID, doc.FileName)
		if err := p.archive.Upload(ctx, key, doc.Data, doc.MediaType); err != nil {
			p.logger.Warn("Failed to archive document", "error", err, "key", key)
		} else {
			record.ArchiveKey = &key
		}
	}

	if err := p.repo.Create(ctx, &record); err != nil {
		p.logger.Error("Failed to save summary",
			"kind", utils.KindPersistenceFailed,
			"error", err,
			"id", record.ID,
			"authenticated", identity.IsAuthenticated())
		return
	}

	p.logger.Info("Summary saved", "id", record.ID, "authenticated", identity.IsAuthenticated())

	if p.broker != nil {
		if err := p.broker.Publish(ctx, events.SummaryCreated(record)); err != nil {
			p.logger.Warn("Failed to publish summary event", "error", err, "id", record.ID)
		}
	}
}
