package authService

import (
	"context"
	"database/sql"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"VisageAuth/internal/api/auth"
	authRepository "VisageAuth/internal/api/auth/repository"
	"VisageAuth/internal/entity"
)

// fakeStore is an in-memory stand-in for the postgres layer so the domain
// logic can be exercised without a database.
type fakeStore struct {
	mu sync.Mutex

	accounts      map[int64]entity.Account
	nextAccountID int64

	faces      map[int64]entity.FaceEnrollment
	nextFaceID int64

	sessions []entity.LoginSession
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[int64]entity.Account),
		faces:    make(map[int64]entity.FaceEnrollment),
	}
}

type fakeRepository struct {
	store *fakeStore
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{store: newFakeStore()}
}

func (r *fakeRepository) NewClient(tx bool) (authRepository.Client, error) {
	return authRepository.Client{
		Accounts: &fakeAccounts{store: r.store},
		Faces:    &fakeFaces{store: r.store},
		Sessions: &fakeSessions{store: r.store},
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeAccounts struct {
	store *fakeStore
}

func (f *fakeAccounts) CreateAccount(_ context.Context, account entity.Account) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, existing := range f.store.accounts {
		if existing.IsActive && (existing.Email == account.Email || existing.Username == account.Username) {
			return 0, auth.ErrDuplicateIdentity
		}
	}

	f.store.nextAccountID++
	account.ID = f.store.nextAccountID
	account.IsActive = true
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.store.accounts[account.ID] = account

	return account.ID, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (entity.Account, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	account, ok := f.store.accounts[id]
	if !ok || !account.IsActive {
		return entity.Account{}, auth.ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (entity.Account, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, account := range f.store.accounts {
		if account.IsActive && account.Email == email {
			return account, nil
		}
	}
	return entity.Account{}, auth.ErrAccountNotFound
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (entity.Account, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, account := range f.store.accounts {
		if account.IsActive && account.Username == username {
			return account, nil
		}
	}
	return entity.Account{}, auth.ErrAccountNotFound
}

func (f *fakeAccounts) List(_ context.Context, limit, offset int) ([]entity.Account, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var active []entity.Account
	for _, account := range f.store.accounts {
		if account.IsActive {
			active = append(active, account)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	if offset >= len(active) {
		return nil, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], nil
}

func (f *fakeAccounts) CountActive(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var total int64
	for _, account := range f.store.accounts {
		if account.IsActive {
			total++
		}
	}
	return total, nil
}

func (f *fakeAccounts) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, account := range f.store.accounts {
		if account.IsActive && account.Email == email && account.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, account := range f.store.accounts {
		if account.IsActive && account.Username == username && account.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) UpdateAccount(_ context.Context, account entity.Account) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	existing, ok := f.store.accounts[account.ID]
	if !ok || !existing.IsActive {
		return auth.ErrAccountNotFound
	}

	account.PasswordHash = existing.PasswordHash
	account.ProfilePhoto = existing.ProfilePhoto
	account.IsActive = existing.IsActive
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now()
	f.store.accounts[account.ID] = account
	return nil
}

func (f *fakeAccounts) UpdateProfilePhoto(_ context.Context, id int64, photoURL string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	account, ok := f.store.accounts[id]
	if !ok || !account.IsActive {
		return auth.ErrAccountNotFound
	}
	account.ProfilePhoto = photoURL
	f.store.accounts[id] = account
	return nil
}

func (f *fakeAccounts) Deactivate(_ context.Context, id int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	account, ok := f.store.accounts[id]
	if !ok {
		return nil
	}
	account.IsActive = false
	f.store.accounts[id] = account
	return nil
}

type fakeFaces struct {
	store *fakeStore
}

func (f *fakeFaces) CreateEnrollment(_ context.Context, enrollment entity.FaceEnrollment) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	f.store.nextFaceID++
	enrollment.ID = f.store.nextFaceID
	enrollment.CreatedAt = time.Now()
	f.store.faces[enrollment.ID] = enrollment
	return enrollment.ID, nil
}

func (f *fakeFaces) GetByID(_ context.Context, id int64) (entity.FaceEnrollment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	enrollment, ok := f.store.faces[id]
	if !ok {
		return entity.FaceEnrollment{}, sql.ErrNoRows
	}
	return enrollment, nil
}

func (f *fakeFaces) ListByAccount(_ context.Context, accountID int64) ([]entity.FaceEnrollment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var res []entity.FaceEnrollment
	for _, enrollment := range f.store.faces {
		if enrollment.AccountID == accountID {
			res = append(res, enrollment)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].IsPrimary != res[j].IsPrimary {
			return res[i].IsPrimary
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (f *fakeFaces) ListAllActive(_ context.Context) ([]entity.FaceEnrollment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var res []entity.FaceEnrollment
	for _, enrollment := range f.store.faces {
		account, ok := f.store.accounts[enrollment.AccountID]
		if ok && account.IsActive {
			res = append(res, enrollment)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].AccountID != res[j].AccountID {
			return res[i].AccountID < res[j].AccountID
		}
		if res[i].IsPrimary != res[j].IsPrimary {
			return res[i].IsPrimary
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (f *fakeFaces) ClearPrimary(_ context.Context, accountID int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for id, enrollment := range f.store.faces {
		if enrollment.AccountID == accountID && enrollment.IsPrimary {
			enrollment.IsPrimary = false
			f.store.faces[id] = enrollment
		}
	}
	return nil
}

func (f *fakeFaces) MarkPrimary(_ context.Context, id int64, accountID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	enrollment, ok := f.store.faces[id]
	if !ok || enrollment.AccountID != accountID {
		return false, nil
	}
	enrollment.IsPrimary = true
	f.store.faces[id] = enrollment
	return true, nil
}

func (f *fakeFaces) Delete(_ context.Context, id int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if _, ok := f.store.faces[id]; !ok {
		return false, nil
	}
	delete(f.store.faces, id)
	return true, nil
}

func (f *fakeFaces) DeleteByAccount(_ context.Context, accountID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var deleted bool
	for id, enrollment := range f.store.faces {
		if enrollment.AccountID == accountID {
			delete(f.store.faces, id)
			deleted = true
		}
	}
	return deleted, nil
}

func (f *fakeFaces) Stats(_ context.Context) (int64, int64, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var activeAccounts int64
	for _, account := range f.store.accounts {
		if account.IsActive {
			activeAccounts++
		}
	}

	enrolled := make(map[int64]struct{})
	for _, enrollment := range f.store.faces {
		enrolled[enrollment.AccountID] = struct{}{}
	}

	return int64(len(f.store.faces)), activeAccounts, int64(len(enrolled)), nil
}

type fakeSessions struct {
	store *fakeStore
}

func (f *fakeSessions) RecordLogin(_ context.Context, session entity.LoginSession) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	session.ID = int64(len(f.store.sessions) + 1)
	session.LoginTime = time.Now()
	f.store.sessions = append(f.store.sessions, session)
	return nil
}

func (f *fakeSessions) History(_ context.Context, accountID int64, limit int) ([]entity.LoginSession, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var res []entity.LoginSession
	for i := len(f.store.sessions) - 1; i >= 0 && len(res) < limit; i-- {
		if f.store.sessions[i].AccountID == accountID {
			res = append(res, f.store.sessions[i])
		}
	}
	return res, nil
}

// fakeRedis keeps attempt counters in a map, ignoring expiry.
type fakeRedis struct {
	mu       sync.Mutex
	attempts map[string]int64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{attempts: make(map[string]int64)}
}

func (r *fakeRedis) IncrFailedAttempts(_ context.Context, key string, _ time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[key]++
	return r.attempts[key], nil
}

func (r *fakeRedis) FailedAttempts(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[key], nil
}

func (r *fakeRedis) ResetFailedAttempts(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, key)
	return nil
}

// fakeS3 records uploads and deletions instead of talking to AWS.
type fakeS3 struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	location string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{location: "https://bucket.s3.amazonaws.com/"}
}

func (s *fakeS3) UploadFile(_ *multipart.FileHeader, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, key)
	return s.location + key, nil
}

func (s *fakeS3) PresignUrl(fileName string) (string, error) {
	return fileName + "?presigned", nil
}

func (s *fakeS3) DeleteFile(fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, fileName)
	return nil
}
