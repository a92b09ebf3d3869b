package authRepository

import (
	"VisageAuth/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

// NewClient hands out a query client. With tx=true every statement issued
// through the client runs inside one transaction; the primary-flag
// clear-then-set sequences depend on this.
func (r *repository) NewClient(tx bool) (Client, error) {
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Accounts: &accountRepository{q: db, log: r.log},
		Faces:    &faceRepository{q: db, log: r.log},
		Sessions: &sessionRepository{q: db, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Accounts interface {
		CreateAccount(ctx context.Context, account entity.Account) (int64, error)
		GetByID(ctx context.Context, id int64) (entity.Account, error)
		GetByEmail(ctx context.Context, email string) (entity.Account, error)
		GetByUsername(ctx context.Context, username string) (entity.Account, error)
		List(ctx context.Context, limit, offset int) ([]entity.Account, error)
		CountActive(ctx context.Context) (int64, error)
		EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
		UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
		UpdateAccount(ctx context.Context, account entity.Account) error
		UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error
		Deactivate(ctx context.Context, id int64) error
	}

	Faces interface {
		CreateEnrollment(ctx context.Context, enrollment entity.FaceEnrollment) (int64, error)
		GetByID(ctx context.Context, id int64) (entity.FaceEnrollment, error)
		ListByAccount(ctx context.Context, accountID int64) ([]entity.FaceEnrollment, error)
		ListAllActive(ctx context.Context) ([]entity.FaceEnrollment, error)
		ClearPrimary(ctx context.Context, accountID int64) error
		MarkPrimary(ctx context.Context, id int64, accountID int64) (bool, error)
		Delete(ctx context.Context, id int64) (bool, error)
		DeleteByAccount(ctx context.Context, accountID int64) (bool, error)
		Stats(ctx context.Context) (total int64, activeAccounts int64, enrolledAccounts int64, err error)
	}

	Sessions interface {
		RecordLogin(ctx context.Context, session entity.LoginSession) error
		History(ctx context.Context, accountID int64, limit int) ([]entity.LoginSession, error)
	}

	Commit   func() error
	Rollback func() error
}

type accountRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}

type faceRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}

type sessionRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}
