package model

import "time"

// Staff roles accepted by the admin API.
const (
    RoleAdmin = "ADMIN"
    RoleStaff = "STAFF"
)

// StaffUser is a back-office account stored in `staff_users`.  Guests never
// have accounts; they are identified by their room session.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased login.
//  PasswordHash – bcrypt hash.
//  Role         – ADMIN or STAFF.
//  IsActive     – disabled accounts cannot log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type StaffUser struct {
    ID           uint64    // staff_users.id
    Email        string    // staff_users.email
    PasswordHash string    // staff_users.password_hash
    Role         string    // staff_users.role
    IsActive     bool      // staff_users.is_active
    CreatedAt    time.Time // staff_users.created_at
    UpdatedAt    time.Time // staff_users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
