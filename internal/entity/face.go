package entity

import "time"

// FaceEnrollment ties one captured face to an account. Descriptor holds the
// feature vector as a JSON array exactly as the extractor produced it; rows
// that fail to decode are skipped by the matcher, never fatal. At most one
// enrollment per account carries IsPrimary.
type FaceEnrollment struct {
	ID         int64     `db:"id"`
	AccountID  int64     `db:"account_id"`
	Descriptor string    `db:"face_descriptor"`
	PhotoPath  string    `db:"photo_path"`
	IsPrimary  bool      `db:"is_primary"`
	CreatedAt  time.Time `db:"created_at"`
}
