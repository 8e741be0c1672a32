package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

var ErrNotFound = errors.New("summary not found")

type Repository interface {
	Create(ctx context.Context, record *models.SummaryRecord) error
	GetByID(ctx context.Context, id string) (*models.SummaryRecord, error)
	ListByOwner(ctx context.Context, identity models.Identity) ([]models.SummaryRecord, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// summaryRow is the stored shape of a SummaryRecord; content is JSON text.
type summaryRow struct {
	ID           string         `db:"id"`
	UserID       sql.NullString `db:"user_id"`
	AnonymousID  sql.NullString `db:"anonymous_id"`
	DocumentName string         `db:"document_name"`
	DocumentType string         `db:"document_type"`
	ArchiveKey   sql.NullString `db:"archive_key"`
	Content      string         `db:"content"`
	CreatedAt    sql.NullTime   `db:"created_at"`
}

const selectColumns = `id, user_id, anonymous_id, document_name, document_type, archive_key, content, created_at`

func (r *repository) Create(ctx context.Context, record *models.SummaryRecord) error {
	if (record.UserID == nil) == (record.AnonymousID == nil) {
		return fmt.Errorf("summary %s must have exactly one owner", record.ID)
	}

	content, err := json.Marshal(record.Content.WithDefaults())
	if err != nil {
		return fmt.Errorf("failed to encode summary content: %w", err)
	}

	query := `
		INSERT INTO summaries (id, user_id, anonymous_id, document_name, document_type, archive_key, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		nullable(record.UserID),
		nullable(record.AnonymousID),
		record.DocumentName,
		string(record.DocumentType),
		nullable(record.ArchiveKey),
		string(content),
		record.CreatedAt.UTC(),
	)

	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.SummaryRecord, error) {
	var row summaryRow

	query := `SELECT ` + selectColumns + ` FROM summaries WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.toRecord()
}

// ListByOwner returns the identity's summaries, newest first.
func (r *repository) ListByOwner(ctx context.Context, identity models.Identity) ([]models.SummaryRecord, error) {
	if identity.IsZero() {
		return []models.SummaryRecord{}, nil
	}

	column := "anonymous_id"
	if identity.IsAuthenticated() {
		column = "user_id"
	}

	query := `SELECT ` + selectColumns + ` FROM summaries WHERE ` + column + ` = $1 ORDER BY created_at DESC, id DESC`

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, identity.Owner()); err != nil {
		return nil, err
	}

	records := make([]models.SummaryRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}

func (row summaryRow) toRecord() (*models.SummaryRecord, error) {
	record := &models.SummaryRecord{
		ID:           row.ID,
		UserID:       ptr(row.UserID),
		AnonymousID:  ptr(row.AnonymousID),
		DocumentName: row.DocumentName,
		DocumentType: models.ParseDocumentType(row.DocumentType),
		ArchiveKey:   ptr(row.ArchiveKey),
		CreatedAt:    row.CreatedAt.Time,
	}

	if err := json.Unmarshal([]byte(row.Content), &record.Content); err != nil {
		return nil, fmt.Errorf("failed to decode summary %s content: %w", row.ID, err)
	}
	record.Content = record.Content.WithDefaults()

	return record, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
