package model

import "time"

// Role is the access level of a user account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the public projection of a users row. The password hash is never part of it.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate holds the normalized fields of a partial update. Nil means "leave untouched".
type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *Role   `json:"role,omitempty"`
}

// Empty reports whether no field was supplied
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil
}

// Actor is the authenticated caller attached to a request
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Credentials is the login view of a user, including the password hash
type Credentials struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}
