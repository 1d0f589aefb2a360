package models

type Role string

const (
	RoleUser            Role = "user"
	RoleServiceProvider Role = "serviceProvider"
	RoleAdmin           Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleServiceProvider, RoleAdmin:
		return true
	}
	return false
}
