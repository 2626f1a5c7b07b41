package models

import "time"

// User roles. Every user has exactly one.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	LoginName    *string   `json:"login_name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	ManagerID    *int64    `json:"manager_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsManager reports whether the user may administer other users.
func (u *User) IsManager() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleAdmin
}

// ManagerRef is a manager attached to a user through the supplementary
// user_managers relation.
type ManagerRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserSummary is the reduced shape exposed to non-admin listings.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// DirectoryEntry is one row of the admin user directory, carrying both the
// primary manager pointer and all supplementary managers.
type DirectoryEntry struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	LoginName   *string      `json:"login_name,omitempty"`
	Role        string       `json:"role"`
	ManagerID   *int64       `json:"manager_id,omitempty"`
	ManagerName *string      `json:"manager_name,omitempty"`
	Managers    []ManagerRef `json:"managers"`
	CreatedAt   time.Time    `json:"created_at"`
}
