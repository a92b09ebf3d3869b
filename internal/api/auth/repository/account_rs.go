package authRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"VisageAuth/internal/api/auth"
	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type AccountDB struct {
	ID           int64          `db:"id"`
	Email        sql.NullString `db:"email"`
	Username     sql.NullString `db:"username"`
	PasswordHash sql.NullString `db:"password_hash"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	Phone        sql.NullString `db:"phone"`
	Address      sql.NullString `db:"address"`
	DateOfBirth  sql.NullTime   `db:"date_of_birth"`
	ProfilePhoto sql.NullString `db:"profile_photo"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

func (r *accountRepository) CreateAccount(c context.Context, account entity.Account) (int64, error) {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()
	argsKV := map[string]interface{}{
		"email":         account.Email,
		"username":      account.Username,
		"password_hash": account.PasswordHash,
		"first_name":    account.FirstName,
		"last_name":     account.LastName,
		"phone":         nullString(account.Phone),
		"address":       nullString(account.Address),
		"date_of_birth": nullTime(account.DateOfBirth),
		"created_at":    now,
		"updated_at":    now,
	}

	query, args, err := sqlx.Named(queryCreateAccount, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateAccount named query preparation err")
		return 0, err
	}
	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(c, query, args...).Scan(&id); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"constraint": pqErr.Constraint,
			}).Warn("Email or username already exists")
			return 0, auth.ErrDuplicateIdentity
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating account")

		return 0, err
	}

	return id, nil
}

func (r *accountRepository) GetByID(c context.Context, id int64) (entity.Account, error) {
	return r.getOne(c, queryGetAccountByID, map[string]interface{}{"id": id}, "GetByID")
}

func (r *accountRepository) GetByEmail(c context.Context, email string) (entity.Account, error) {
	return r.getOne(c, queryGetAccountByEmail, map[string]interface{}{"email": email}, "GetByEmail")
}

func (r *accountRepository) GetByUsername(c context.Context, username string) (entity.Account, error) {
	return r.getOne(c, queryGetAccountByUsername, map[string]interface{}{"username": username}, "GetByUsername")
}

func (r *accountRepository) getOne(c context.Context, namedQuery string, argsKV map[string]interface{}, op string) (entity.Account, error) {
	requestID := contextPkg.GetRequestID(c)
	var account AccountDB

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return entity.Account{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn(op + " no rows found")
			return entity.Account{}, auth.ErrAccountNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return entity.Account{}, err
	}

	return r.makeAccount(account), nil
}

func (r *accountRepository) List(c context.Context, limit, offset int) ([]entity.Account, error) {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	query, args, err := sqlx.Named(queryListAccounts, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("List named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("List execution err")
		return nil, err
	}
	defer rows.Close()

	var accounts []entity.Account
	for rows.Next() {
		var row AccountDB
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("List scan err")
			return nil, err
		}
		accounts = append(accounts, r.makeAccount(row))
	}

	return accounts, rows.Err()
}

func (r *accountRepository) CountActive(c context.Context) (int64, error) {
	requestID := contextPkg.GetRequestID(c)

	var total int64
	if err := r.q.QueryRowxContext(c, r.q.Rebind(queryCountActiveAccounts)).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountActive execution err")
		return 0, err
	}

	return total, nil
}

func (r *accountRepository) EmailTaken(c context.Context, email string, excludeID int64) (bool, error) {
	return r.identityTaken(c, queryEmailTaken, map[string]interface{}{
		"email":      email,
		"exclude_id": excludeID,
	}, "EmailTaken")
}

func (r *accountRepository) UsernameTaken(c context.Context, username string, excludeID int64) (bool, error) {
	return r.identityTaken(c, queryUsernameTaken, map[string]interface{}{
		"username":   username,
		"exclude_id": excludeID,
	}, "UsernameTaken")
}

func (r *accountRepository) identityTaken(c context.Context, namedQuery string, argsKV map[string]interface{}, op string) (bool, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return false, err
	}

	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(c, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return false, err
	}

	return true, nil
}

func (r *accountRepository) UpdateAccount(c context.Context, account entity.Account) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":            account.ID,
		"email":         account.Email,
		"username":      account.Username,
		"first_name":    account.FirstName,
		"last_name":     account.LastName,
		"phone":         nullString(account.Phone),
		"address":       nullString(account.Address),
		"date_of_birth": nullTime(account.DateOfBirth),
		"updated_at":    time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateAccount, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateAccount named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"constraint": pqErr.Constraint,
			}).Warn("UpdateAccount unique violation")
			return auth.ErrDuplicateIdentity
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateAccount execution err")
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"account_id": account.ID,
		}).Warn("UpdateAccount no rows found")
		return auth.ErrAccountNotFound
	}

	return nil
}

func (r *accountRepository) UpdateProfilePhoto(c context.Context, id int64, photoURL string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":            id,
		"profile_photo": photoURL,
		"updated_at":    time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateProfilePhoto, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateProfilePhoto named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateProfilePhoto execution err")
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return auth.ErrAccountNotFound
	}

	return nil
}

// Deactivate is a soft delete and deliberately idempotent: flipping an
// already-inactive account is not an error.
func (r *accountRepository) Deactivate(c context.Context, id int64) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         id,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryDeactivateAccount, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Deactivate named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Deactivate execution err")
		return err
	}

	return nil
}

func (r *accountRepository) makeAccount(row AccountDB) entity.Account {
	account := entity.Account{
		ID:           row.ID,
		Email:        row.Email.String,
		Username:     row.Username.String,
		PasswordHash: row.PasswordHash.String,
		FirstName:    row.FirstName.String,
		LastName:     row.LastName.String,
		Phone:        row.Phone.String,
		Address:      row.Address.String,
		ProfilePhoto: row.ProfilePhoto.String,
		IsActive:     row.IsActive,
	}

	if row.DateOfBirth.Valid {
		account.DateOfBirth = row.DateOfBirth.Time
	}
	if row.CreatedAt.Valid {
		account.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		account.UpdatedAt = row.UpdatedAt.Time
	}

	return account
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
