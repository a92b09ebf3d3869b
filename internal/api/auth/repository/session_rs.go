package authRepository

import (
	"database/sql"
	"time"

	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (r *sessionRepository) RecordLogin(c context.Context, session entity.LoginSession) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"account_id":   session.AccountID,
		"login_method": session.Method,
		"ip_address":   nullString(session.IPAddress),
		"user_agent":   nullString(session.UserAgent),
		"login_time":   time.Now(),
	}

	query, args, err := sqlx.Named(queryRecordLogin, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("RecordLogin named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("RecordLogin execution err")
		return err
	}

	return nil
}

func (r *sessionRepository) History(c context.Context, accountID int64, limit int) ([]entity.LoginSession, error) {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"account_id": accountID,
		"limit":      limit,
	}

	query, args, err := sqlx.Named(queryLoginHistory, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("History named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("History execution err")
		return nil, err
	}
	defer rows.Close()

	var sessions []entity.LoginSession
	for rows.Next() {
		var row sessionDB
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("History scan err")
			return nil, err
		}
		sessions = append(sessions, makeSession(row))
	}

	return sessions, rows.Err()
}

type sessionDB struct {
	ID        int64          `db:"id"`
	AccountID int64          `db:"account_id"`
	Method    sql.NullString `db:"login_method"`
	IPAddress sql.NullString `db:"ip_address"`
	UserAgent sql.NullString `db:"user_agent"`
	LoginTime sql.NullTime   `db:"login_time"`
}

func makeSession(row sessionDB) entity.LoginSession {
	session := entity.LoginSession{
		ID:        row.ID,
		AccountID: row.AccountID,
		Method:    row.Method.String,
		IPAddress: row.IPAddress.String,
		UserAgent: row.UserAgent.String,
	}

	if row.LoginTime.Valid {
		session.LoginTime = row.LoginTime.Time
	}

	return session
}
