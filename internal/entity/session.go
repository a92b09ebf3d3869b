package entity

import "time"

type LoginMethod string

const (
	LoginMethodPassword LoginMethod = "password"
	LoginMethodFace     LoginMethod = "face"
)

func (m LoginMethod) String() string {
	return string(m)
}

// LoginSession is an append-only audit row. It is written best-effort after a
// successful authentication and never updated.
type LoginSession struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Method    string    `db:"login_method"`
	IPAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	LoginTime time.Time `db:"login_time"`
}
