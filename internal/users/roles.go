package users

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role carries admin capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
