package model

import "time"

// Role values stored in users.role.  Registration always produces RoleUser;
// only an existing admin can promote an account.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool { return s == RoleUser || s == RoleAdmin }

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column in the database.  The json tags are
// omitted here because these structs are primarily used internally by the
// repository layer; handlers define separate response types with appropriate
// JSON tags so that the password hash can never leak into a response body.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – unique display name.
//  Email        – unique email address (stored lower-cased).
//  PasswordHash – bcrypt hashed password.
//  Role         – role name ("user" or "admin").
//  IsApproved   – whether an admin has approved the account for login.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsApproved   bool      // users.is_approved
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
