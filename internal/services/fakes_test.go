package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/repository"
	"github.com/BerylCAtieno/cheatsheet-api/internal/storage"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
	panic  bool
	calls  int
	texts  []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ models.DocumentType, text string) (*models.AnalysisResult, error) {
	f.calls++
	f.texts = append(f.texts, text)
	if f.panic {
		panic("analyzer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	return &r, nil
}

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]models.SummaryRecord
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]models.SummaryRecord)}
}

func (m *memoryRepo) Create(_ context.Context, record *models.SummaryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[record.ID] = *record
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*models.SummaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memoryRepo) ListByOwner(_ context.Context, identity models.Identity) ([]models.SummaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.SummaryRecord{}
	for _, r := range m.records {
		if ownedBy(&r, identity) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) all() []models.SummaryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SummaryRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out
}

type memoryArchive struct {
	objects map[string][]byte
	err     error
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{objects: make(map[string][]byte)}
}

func (a *memoryArchive) Upload(_ context.Context, key string, data []byte, _ string) error {
	if a.err != nil {
		return a.err
	}
	a.objects[key] = append([]byte(nil), data...)
	return nil
}

func (a *memoryArchive) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := a.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

var errBoom = errors.New("boom")

func newResolver() *auth.Resolver {
	return auth.NewResolver(nil, false, utils.NopLogger())
}

// newCreds returns credentials for a fresh request, optionally carrying an
// anonymous id cookie, and the recorder that captures Set-Cookie.
func newCreds(anonID string) (auth.Credentials, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	if anonID != "" {
		r.AddCookie(&http.Cookie{Name: auth.AnonymousCookieName, Value: anonID})
	}
	w := httptest.NewRecorder()
	return auth.CredentialsFromRequest(w, r), w
}
