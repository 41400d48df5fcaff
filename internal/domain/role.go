package domain

// Role is the account role stored on a user and carried in bearer tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Permission names a capability checked per request.
type Permission string

const (
	PermManageEvents         Permission = "manage_events"
	PermCheckIn              Permission = "check_in"
	PermViewAllRegistrations Permission = "view_all_registrations"
	PermViewPayments         Permission = "view_payments"
	PermCancelRegistrations  Permission = "cancel_registrations"
	PermViewUsers            Permission = "view_users"
)

var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: {
		PermManageEvents:         {},
		PermCheckIn:              {},
		PermViewAllRegistrations: {},
		PermViewPayments:         {},
		PermCancelRegistrations:  {},
		PermViewUsers:            {},
	},
	RoleStudent: {},
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Can reports whether the role grants p. Unknown roles grant nothing.
func (r Role) Can(p Permission) bool {
	perms, ok := rolePermissions[r]
	if !ok {
		return false
	}
	_, ok = perms[p]
	return ok
}
