package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/cheatsheet-api/internal/db"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	if err := db.RunMigrations(path); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	conn, err := db.Open(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func strPtr(s string) *string { return &s }

func sampleRecord(id string, identity models.Identity, createdAt time.Time) *models.SummaryRecord {
	record := &models.SummaryRecord{
		ID:           id,
		DocumentName: "report.pdf",
		DocumentType: models.DocumentTypeMarketing,
		Content: models.AnalysisResult{
			Summary:   "Revenue grew.",
			KeyPoints: []string{"Revenue grew 20%"},
		},
		CreatedAt: createdAt,
	}
	if identity.IsAuthenticated() {
		record.UserID = strPtr(identity.UserID)
	} else {
		record.AnonymousID = strPtr(identity.AnonymousID)
	}
	return record
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	created := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	record := sampleRecord("sum-1", models.Identity{AnonymousID: "anon-1"}, created)
	record.ArchiveKey = strPtr("summaries/sum-1/report.pdf")

	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := repo.GetByID(ctx, "sum-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	if got.UserID != nil {
		t.Errorf("UserID = %v, want nil", *got.UserID)
	}
	if got.AnonymousID == nil || *got.AnonymousID != "anon-1" {
		t.Errorf("AnonymousID = %v", got.AnonymousID)
	}
	if got.ArchiveKey == nil || *got.ArchiveKey != "summaries/sum-1/report.pdf" {
		t.Errorf("ArchiveKey = %v", got.ArchiveKey)
	}
	if got.DocumentName != "report.pdf" || got.DocumentType != models.DocumentTypeMarketing {
		t.Errorf("document = %q/%q", got.DocumentName, got.DocumentType)
	}
	if got.Content.Summary != "Revenue grew." || len(got.Content.KeyPoints) != 1 {
		t.Errorf("content = %+v", got.Content)
	}
	if got.Content.KeyTerms == nil {
		t.Errorf("expected empty keyTerms, got nil")
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %s, want %s", got.CreatedAt, created)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateRequiresExactlyOneOwner(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	none := sampleRecord("none", models.Identity{AnonymousID: "a"}, time.Now())
	none.AnonymousID = nil
	if err := repo.Create(ctx, none); err == nil {
		t.Errorf("expected error for record without owner")
	}

	both := sampleRecord("both", models.Identity{UserID: "u"}, time.Now())
	both.AnonymousID = strPtr("a")
	if err := repo.Create(ctx, both); err == nil {
		t.Errorf("expected error for record with two owners")
	}
}

func TestListByOwner(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	user := models.Identity{UserID: "user-1"}
	anon := models.Identity{AnonymousID: "anon-1"}

	records := []*models.SummaryRecord{
		sampleRecord("u-old", user, base),
		sampleRecord("u-new", user, base.Add(2*time.Hour)),
		sampleRecord("u-mid", user, base.Add(time.Hour)),
		sampleRecord("a-1", anon, base),
	}
	for _, r := range records {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create(%s) returned error: %v", r.ID, err)
		}
	}

	got, err := repo.ListByOwner(ctx, user)
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}

	want := []string{"u-new", "u-mid", "u-old"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("record %d = %s, want %s", i, got[i].ID, id)
		}
	}

	anonRecords, err := repo.ListByOwner(ctx, anon)
	if err != nil {
		t.Fatalf("ListByOwner(anon) returned error: %v", err)
	}
	if len(anonRecords) != 1 || anonRecords[0].ID != "a-1" {
		t.Errorf("anonymous records = %+v", anonRecords)
	}

	// an anonymous id equal to a user id must not leak the user's history
	collide, err := repo.ListByOwner(ctx, models.Identity{AnonymousID: "user-1"})
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}
	if len(collide) != 0 {
		t.Errorf("got %d records for colliding anonymous id, want 0", len(collide))
	}

	empty, err := repo.ListByOwner(ctx, models.Identity{})
	if err != nil || len(empty) != 0 {
		t.Errorf("ListByOwner(zero) = %v, %v", empty, err)
	}
}
