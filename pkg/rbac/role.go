package rbac

// Role is one of the closed set of account roles
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleEmployee   Role = "employee"
	RoleStudent    Role = "student"
	RoleRegular    Role = "regular"
	RoleLibrarian  Role = "librarian"
	RoleAssistant  Role = "assistant"
)

var allRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleSuperadmin: {},
	RoleManager:    {},
	RoleStaff:      {},
	RoleEmployee:   {},
	RoleStudent:    {},
	RoleRegular:    {},
	RoleLibrarian:  {},
	RoleAssistant:  {},
}

// ParseRole validates a role string against the closed set
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := allRoles[r]
	return r, ok
}

// IsValid reports whether the role belongs to the closed set
func (r Role) IsValid() bool {
	_, ok := allRoles[r]
	return ok
}

// IsPrivileged reports whether the role requires a privileged ID to authenticate
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleSuperadmin, RoleManager:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
