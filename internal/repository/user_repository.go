package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gracechapel/livestream/internal/model"
	"github.com/gracechapel/livestream/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,is_approved,created_at,updated_at"

// Create inserts a new account and returns its ID.  Accounts always start as
// unapproved regular users; only an admin can change either flag afterwards.
// The unique indexes on email and name are the source of truth for duplicate
// detection so two concurrent registrations can never both succeed.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, is_approved) VALUES (?,?,?,?,?)",
		name, email, hash, model.RoleUser, false)
	if err != nil {
		// MySQL 1062 = duplicate entry; only the violated index name decides
		// which column collided.  The duplicate value itself also appears in
		// the message and may contain "name" (username@example.com), so it
		// must never be consulted.
		if msg := strings.ToLower(err.Error()); strings.Contains(msg, "1062") {
			if strings.Contains(violatedKey(msg), "name") {
				return 0, ErrNameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all accounts ordered by creation time, newest first.  Used by
// the admin dashboard to review pending registrations.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.IsApproved, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetApproval flips the approval flag of an account.  The update is
// idempotent: writing the current value succeeds and changes nothing.
func (r *UserRepo) SetApproval(ctx context.Context, id uint64, approved bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_approved=?, updated_at=NOW() WHERE id=?", approved, id)
	if err != nil {
		return err
	}
	return requireRowExists(ctx, r.DB, res, id)
}

// SetRole updates the role of an account.  Like SetApproval it is idempotent.
// Role validity is enforced in the handler; the repository only persists.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=NOW() WHERE id=?", role, id)
	if err != nil {
		return err
	}
	return requireRowExists(ctx, r.DB, res, id)
}

// UpdatePassword replaces the stored bcrypt hash.  Used by the password
// reset flow after a reset token has been consumed.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return requireRowExists(ctx, r.DB, res, id)
}

// violatedKey extracts the index name from a duplicate-entry message, e.g.
// "Duplicate entry 'x' for key 'users.email'" yields "users.email".  Returns
// "" when the message carries no key suffix.
func violatedKey(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, '\''); j >= 0 {
		return rest[:j]
	}
	return rest
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsApproved, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// requireRowExists distinguishes "no change needed" from "no such user".
// UPDATE reports zero affected rows in both cases, so when nothing changed
// the row is probed explicitly.
func requireRowExists(ctx context.Context, db *sql.DB, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	var exists int
	if err := db.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}
