package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pingliu/service-rental-go/internal/user"
	"github.com/pingliu/service-rental-go/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table and its unique indexes if not exists
// (idempotent). The unique indexes are what make concurrent registrations
// with the same username or phone resolve to exactly one winner.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  real_name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL,
  avatar TEXT,
  gender TEXT NOT NULL DEFAULT 'male',
  birthday TEXT NOT NULL DEFAULT '1900-01-01',
  id_card_photo TEXT NOT NULL DEFAULT '',
  alipay_account TEXT NOT NULL DEFAULT '',
  sesame_credit INT NOT NULL DEFAULT 600,
  status TEXT NOT NULL DEFAULT 'normal',
  role TEXT NOT NULL DEFAULT 'user',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone ON users (phone);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// translateConstraint maps a Postgres unique-violation to the domain error
// naming the colliding field.
func translateConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "idx_users_username":
			return user.ErrUsernameTaken
		case "idx_users_phone":
			return user.ErrPhoneTaken
		}
	}
	return err
}

// Create inserts a new account row. The caller assigns the ID and the
// already-hashed password; unique violations surface as the field-specific
// duplicate error.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users
		(id, username, password_hash, real_name, phone, avatar, gender, birthday,
		 id_card_photo, alipay_account, sesame_credit, status, role)
	VALUES
		(:id, :username, :password_hash, :real_name, :phone, :avatar, :gender, :birthday,
		 :id_card_photo, :alipay_account, :sesame_credit, :status, :role)
	RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return translateConstraint(err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		return nil
	}
	return errors.New("no row returned")
}

// GetByLogin returns the account whose username or phone matches the given
// identifier. This is the only read path that loads the password hash.
func (r *UserRepo) GetByLogin(ctx context.Context, account string) (*entity.User, error) {
	const q = `SELECT id, username, password_hash, real_name, phone, avatar, gender,
		birthday, id_card_photo, alipay_account, sesame_credit, status, role,
		created_at, updated_at
	FROM users WHERE username=$1 OR phone=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrAccountNotFound
		}
		return nil, err
	}
	return &row, nil
}

// GetByID fetches an account without its password hash.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT id, username, '' AS password_hash, real_name, phone, avatar, gender,
		birthday, id_card_photo, alipay_account, sesame_credit, status, role,
		created_at, updated_at
	FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrAccountNotFound
		}
		return nil, err
	}
	return &row, nil
}

// GetCredential returns only the stored password hash, used by the
// password-change path to re-verify the current password.
func (r *UserRepo) GetCredential(ctx context.Context, id int64) (string, error) {
	const q = `SELECT password_hash FROM users WHERE id=$1`
	var hash string
	if err := r.db.GetContext(ctx, &hash, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", user.ErrAccountNotFound
		}
		return "", err
	}
	return hash, nil
}

// CheckTaken reports which of the two identity fields already belongs to
// another account, so registration can name the colliding field.
func (r *UserRepo) CheckTaken(ctx context.Context, username, phone string) (usernameTaken, phoneTaken bool, err error) {
	const q = `SELECT username, phone FROM users WHERE username=$1 OR phone=$2`
	rows, err := r.db.QueryxContext(ctx, q, username, phone)
	if err != nil {
		return false, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var u, p string
		if err := rows.Scan(&u, &p); err != nil {
			return false, false, err
		}
		if u == username {
			usernameTaken = true
		}
		if p == phone {
			phoneTaken = true
		}
	}
	return usernameTaken, phoneTaken, rows.Err()
}

// UpdateProfile persists the mutable profile fields. It never touches the
// password hash; unique violations on username/phone are translated.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *entity.User) error {
	const q = `UPDATE users SET
		username=:username, real_name=:real_name, phone=:phone, gender=:gender,
		birthday=:birthday, alipay_account=:alipay_account, updated_at=NOW()
	WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, u)
	if err != nil {
		return translateConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrAccountNotFound
	}
	return nil
}

// UpdatePassword writes a new password hash. This is the single write path
// for credentials, so an already-hashed value is never re-hashed.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, hash)
	return err
}

// UpdateAvatar stores the URL of a freshly uploaded avatar.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id int64, avatarURL string) error {
	const q = `UPDATE users SET avatar=$2, updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, avatarURL)
	return err
}
