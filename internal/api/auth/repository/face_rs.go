package authRepository

import (
	"database/sql"
	"errors"
	"time"

	"VisageAuth/internal/entity"
	contextPkg "VisageAuth/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (r *faceRepository) CreateEnrollment(c context.Context, enrollment entity.FaceEnrollment) (int64, error) {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"account_id":      enrollment.AccountID,
		"face_descriptor": enrollment.Descriptor,
		"photo_path":      enrollment.PhotoPath,
		"is_primary":      enrollment.IsPrimary,
		"created_at":      time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateEnrollment, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateEnrollment named query preparation err")
		return 0, err
	}
	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(c, query, args...).Scan(&id); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating enrollment")
		return 0, err
	}

	return id, nil
}

func (r *faceRepository) GetByID(c context.Context, id int64) (entity.FaceEnrollment, error) {
	requestID := contextPkg.GetRequestID(c)
	var enrollment entity.FaceEnrollment

	query, args, err := sqlx.Named(queryGetEnrollmentByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.FaceEnrollment{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&enrollment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.FaceEnrollment{}, sql.ErrNoRows
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.FaceEnrollment{}, err
	}

	return enrollment, nil
}

func (r *faceRepository) ListByAccount(c context.Context, accountID int64) ([]entity.FaceEnrollment, error) {
	return r.list(c, queryListEnrollmentsByAccount, map[string]interface{}{"account_id": accountID}, "ListByAccount")
}

// ListAllActive feeds the identification scan: every enrollment of every
// active account, ordered by account then primary-first then id, so repeated
// scans see candidates in the same order.
func (r *faceRepository) ListAllActive(c context.Context) ([]entity.FaceEnrollment, error) {
	return r.list(c, queryListActiveEnrollments, map[string]interface{}{}, "ListAllActive")
}

func (r *faceRepository) list(c context.Context, namedQuery string, argsKV map[string]interface{}, op string) ([]entity.FaceEnrollment, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return nil, err
	}
	defer rows.Close()

	var enrollments []entity.FaceEnrollment
	for rows.Next() {
		var row entity.FaceEnrollment
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error(op + " scan err")
			return nil, err
		}
		enrollments = append(enrollments, row)
	}

	return enrollments, rows.Err()
}

func (r *faceRepository) ClearPrimary(c context.Context, accountID int64) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryClearPrimary, map[string]interface{}{"account_id": accountID})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ClearPrimary named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ClearPrimary execution err")
		return err
	}

	return nil
}

// MarkPrimary flips the flag only when the enrollment belongs to accountID;
// a miss is reported as false, not an error.
func (r *faceRepository) MarkPrimary(c context.Context, id int64, accountID int64) (bool, error) {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         id,
		"account_id": accountID,
	}

	query, args, err := sqlx.Named(queryMarkPrimary, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("MarkPrimary named query preparation err")
		return false, err
	}

	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("MarkPrimary execution err")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *faceRepository) Delete(c context.Context, id int64) (bool, error) {
	return r.deleteRows(c, queryDeleteEnrollment, map[string]interface{}{"id": id}, "Delete")
}

func (r *faceRepository) DeleteByAccount(c context.Context, accountID int64) (bool, error) {
	return r.deleteRows(c, queryDeleteEnrollmentsByAccount, map[string]interface{}{"account_id": accountID}, "DeleteByAccount")
}

func (r *faceRepository) deleteRows(c context.Context, namedQuery string, argsKV map[string]interface{}, op string) (bool, error) {
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

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *faceRepository) Stats(c context.Context) (int64, int64, int64, error) {
	requestID := contextPkg.GetRequestID(c)

	var total, activeAccounts, enrolledAccounts int64

	if err := r.q.QueryRowxContext(c, r.q.Rebind(queryCountEnrollments)).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Stats enrollment count err")
		return 0, 0, 0, err
	}

	if err := r.q.QueryRowxContext(c, r.q.Rebind(queryCountActiveAccounts)).Scan(&activeAccounts); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Stats active account count err")
		return 0, 0, 0, err
	}

	if err := r.q.QueryRowxContext(c, r.q.Rebind(queryCountEnrolledAccounts)).Scan(&enrolledAccounts); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Stats enrolled account count err")
		return 0, 0, 0, err
	}

	return total, activeAccounts, enrolledAccounts, nil
}
