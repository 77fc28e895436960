package domain

// User roles. Vendors own nodes and push readings; admins manage the tree.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleVendor = "vendor"
)

type User struct {
	ID       int    `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"` // unique
	Password string `db:"password"` // bcrypt hash
	UserType string `db:"user_type"`
}

func (u *User) ToJSON() map[string]any {
	return map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"user_type": u.UserType,
	}
}
