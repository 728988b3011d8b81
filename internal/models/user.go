package models

import "time"

// Role controls what a user may do. New users always start as RoleUser;
// elevation happens only through the admin bootstrap endpoint.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an applicant or administrator. Email is the natural key and
// is always stored lowercased. The magic-link fields are pointers so "no
// outstanding link" is distinguishable from an empty token, and they are
// excluded from JSON so they never leave the API.
type User struct {
	ID               string     `bson:"_id,omitempty" json:"id"`
	Email            string     `bson:"email" json:"email"`
	Name             string     `bson:"name" json:"name"`
	Role             Role       `bson:"role" json:"role"`
	MagicLinkToken   *string    `bson:"magicLinkToken,omitempty" json:"-"`
	MagicLinkExpires *time.Time `bson:"magicLinkExpires,omitempty" json:"-"`
	Verified         bool       `bson:"verified" json:"verified"`
	LastLoginAt      *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// HasPendingLink reports whether a magic-link request is outstanding.
func (u *User) HasPendingLink() bool {
	return u.MagicLinkToken != nil && u.MagicLinkExpires != nil
}

// Summary is the identity shape embedded in API responses.
type Summary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Summary returns the public identity view of the user.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
