package user

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

var RoleValues = []string{
	string(RoleOwner),
	string(RoleManager),
	string(RoleStaff),
}

// CanManageRoster reports whether the role may edit shifts, templates and
// other employees' punches.
func CanManageRoster(role Role) bool {
	return role == RoleOwner || role == RoleManager
}
