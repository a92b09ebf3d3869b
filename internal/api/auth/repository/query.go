package authRepository

const (
	queryCreateAccount = `
INSERT INTO accounts (email, username, password_hash, first_name, last_name,
                      phone, address, date_of_birth, is_active, created_at, updated_at)
VALUES (:email, :username, :password_hash, :first_name, :last_name,
        :phone, :address, :date_of_birth, TRUE, :created_at, :updated_at)
RETURNING id`

	queryGetAccountByID = `
SELECT id, email, username, password_hash, first_name, last_name, phone,
       address, date_of_birth, profile_photo, is_active, created_at, updated_at
FROM accounts
    WHERE id = :id AND is_active = TRUE`

	queryGetAccountByEmail = `
SELECT id, email, username, password_hash, first_name, last_name, phone,
       address, date_of_birth, profile_photo, is_active, created_at, updated_at
FROM accounts
    WHERE email = :email AND is_active = TRUE`

	queryGetAccountByUsername = `
SELECT id, email, username, password_hash, first_name, last_name, phone,
       address, date_of_birth, profile_photo, is_active, created_at, updated_at
FROM accounts
    WHERE username = :username AND is_active = TRUE`

	queryListAccounts = `
SELECT id, email, username, password_hash, first_name, last_name, phone,
       address, date_of_birth, profile_photo, is_active, created_at, updated_at
FROM accounts
WHERE is_active = TRUE
ORDER BY created_at DESC
LIMIT :limit OFFSET :offset`

	queryCountActiveAccounts = `
SELECT COUNT(*) FROM accounts WHERE is_active = TRUE`

	queryEmailTaken = `
SELECT id FROM accounts
WHERE email = :email AND is_active = TRUE AND id <> :exclude_id`

	queryUsernameTaken = `
SELECT id FROM accounts
WHERE username = :username AND is_active = TRUE AND id <> :exclude_id`

	queryUpdateAccount = `
UPDATE accounts
SET email = :email,
    username = :username,
    first_name = :first_name,
    last_name = :last_name,
    phone = :phone,
    address = :address,
    date_of_birth = :date_of_birth,
    updated_at = :updated_at
WHERE id = :id AND is_active = TRUE`

	queryUpdateProfilePhoto = `
UPDATE accounts
SET profile_photo = :profile_photo,
    updated_at = :updated_at
WHERE id = :id AND is_active = TRUE`

	queryDeactivateAccount = `
UPDATE accounts
SET is_active = FALSE,
    updated_at = :updated_at
WHERE id = :id`

	queryCreateEnrollment = `
INSERT INTO face_enrollments (account_id, face_descriptor, photo_path, is_primary, created_at)
VALUES (:account_id, :face_descriptor, :photo_path, :is_primary, :created_at)
RETURNING id`

	queryGetEnrollmentByID = `
SELECT id, account_id, face_descriptor, photo_path, is_primary, created_at
FROM face_enrollments
    WHERE id = :id`

	queryListEnrollmentsByAccount = `
SELECT id, account_id, face_descriptor, photo_path, is_primary, created_at
FROM face_enrollments
WHERE account_id = :account_id
ORDER BY is_primary DESC, created_at DESC, id DESC`

	queryListActiveEnrollments = `
SELECT f.id, f.account_id, f.face_descriptor, f.photo_path, f.is_primary, f.created_at
FROM face_enrollments f
         JOIN accounts a ON a.id = f.account_id
WHERE a.is_active = TRUE
ORDER BY f.account_id, f.is_primary DESC, f.id`

	queryClearPrimary = `
UPDATE face_enrollments
SET is_primary = FALSE
WHERE account_id = :account_id`

	queryMarkPrimary = `
UPDATE face_enrollments
SET is_primary = TRUE
WHERE id = :id AND account_id = :account_id`

	queryDeleteEnrollment = `
DELETE FROM face_enrollments
WHERE id = :id`

	queryDeleteEnrollmentsByAccount = `
DELETE FROM face_enrollments
WHERE account_id = :account_id`

	queryCountEnrollments = `
SELECT COUNT(*) FROM face_enrollments`

	queryCountEnrolledAccounts = `
SELECT COUNT(DISTINCT account_id) FROM face_enrollments`

	queryRecordLogin = `
INSERT INTO login_sessions (account_id, login_method, ip_address, user_agent, login_time)
VALUES (:account_id, :login_method, :ip_address, :user_agent, :login_time)`

	queryLoginHistory = `
SELECT id, account_id, login_method, ip_address, user_agent, login_time
FROM login_sessions
WHERE account_id = :account_id
ORDER BY login_time DESC, id DESC
LIMIT :limit`
)
