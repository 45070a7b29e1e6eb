package models

// Role is the access level of a [User].
type Role string

const (
	RoleStandard           Role = "standard"
	RoleAdministrator      Role = "administrator"
	RoleSuperAdministrator Role = "superadministrator"
)

// IsAdmin reports whether the role carries administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdministrator || r == RoleSuperAdministrator
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStandard, RoleAdministrator, RoleSuperAdministrator:
		return true
	}
	return false
}
