package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for the Postgres repositories.
// Setting one of the *Err fields makes the matching repository fail.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*models.User
	files   map[int64]*models.File
	refresh map[string]*models.RefreshToken
	revoked map[string]time.Time

	usersErr   error
	filesErr   error
	refreshErr error
	revokeErr  error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:  100,
		users:   map[int64]*models.User{},
		files:   map[int64]*models.File{},
		refresh: map[string]*models.RefreshToken{},
		revoked: map[string]time.Time{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) ([]int64, error) {
	return nil, nil
}
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return &memUsers{m.s} }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository { return &memFiles{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return &memRefresh{m.s}
}
func (m *fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository { return &memRevocations{m.s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) MarkVerified(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsVerified = true
	return nil
}

type memFiles struct{ s *memStore }

func (r *memFiles) Create(_ context.Context, f *models.File) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.filesErr != nil {
		return nil, r.s.filesErr
	}
	f.ID = r.s.id()
	f.CreatedAt = time.Now()
	cp := *f
	r.s.files[f.ID] = &cp
	return f, nil
}

func (r *memFiles) GetByID(_ context.Context, id int64) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.filesErr != nil {
		return nil, r.s.filesErr
	}
	f, ok := r.s.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memFiles) list(keep func(*models.File) bool) ([]*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.filesErr != nil {
		return nil, r.s.filesErr
	}
	var out []*models.File
	for _, f := range r.s.files {
		if keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memFiles) List(context.Context) ([]*models.File, error) {
	return r.list(func(*models.File) bool { return true })
}

func (r *memFiles) ListByUploader(_ context.Context, userID int64) ([]*models.File, error) {
	return r.list(func(f *models.File) bool { return f.UploadedBy == userID })
}

func (r *memFiles) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.files, id)
	return nil
}

type memRefresh struct{ s *memStore }

func (r *memRefresh) Create(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.refreshErr != nil {
		return r.s.refreshErr
	}
	r.s.refresh[token] = &models.RefreshToken{ID: r.s.id(), UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (r *memRefresh) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.refreshErr != nil {
		return nil, r.s.refreshErr
	}
	rt, ok := r.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.s.refresh, token)
	return rt, nil
}

func (r *memRefresh) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.refreshErr != nil {
		return r.s.refreshErr
	}
	delete(r.s.refresh, token)
	return nil
}

func (r *memRefresh) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, rt := range r.s.refresh {
		if rt.Expires.Before(before) {
			delete(r.s.refresh, k)
			n++
		}
	}
	return n, nil
}

type memRevocations struct{ s *memStore }

func (r *memRevocations) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.revokeErr != nil {
		return r.s.revokeErr
	}
	if _, ok := r.s.revoked[id]; !ok {
		r.s.revoked[id] = expiresAt
	}
	return nil
}

func (r *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.revokeErr != nil {
		return false, r.s.revokeErr
	}
	_, ok := r.s.revoked[id]
	return ok, nil
}

func (r *memRevocations) Purge(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, exp := range r.s.revoked {
		if !exp.IsZero() && exp.Before(before) {
			delete(r.s.revoked, id)
			n++
		}
	}
	return n, nil
}
