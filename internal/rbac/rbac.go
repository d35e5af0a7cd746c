package rbac

// Role is one of the finite set of roles the identity provider can assign.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Action is a capability that can be granted to a role.
type Action string

const (
	ActionCreateGroup Action = "createGroup"
	ActionUpdateGroup Action = "updateGroup"
	ActionDeleteGroup Action = "deleteGroup"
	ActionCreateUser  Action = "createUser"
	ActionUpdateUser  Action = "updateUser"
	ActionDeleteUser  Action = "deleteUser"
)

// capabilities is the static role/capability table. It is resolved once at
// package load and never mutated at runtime.
var capabilities = map[Role]map[Action]bool{
	RoleViewer: {
		ActionCreateGroup: false,
		ActionUpdateGroup: false,
		ActionDeleteGroup: false,
		ActionCreateUser:  false,
		ActionUpdateUser:  false,
		ActionDeleteUser:  false,
	},
	RoleManager: {
		ActionCreateGroup: true,
		ActionUpdateGroup: true,
		ActionDeleteGroup: false,
		ActionCreateUser:  false,
		ActionUpdateUser:  false,
		ActionDeleteUser:  false,
	},
	RoleAdmin: {
		ActionCreateGroup: true,
		ActionUpdateGroup: true,
		ActionDeleteGroup: true,
		ActionCreateUser:  true,
		ActionUpdateUser:  true,
		ActionDeleteUser:  true,
	},
}

// Can reports whether the role holds the capability. Unknown roles and
// unknown actions resolve to false.
func Can(role Role, action Action) bool {
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	return caps[action]
}

// ParseRole maps a raw role string onto the enumeration. Unknown values
// degrade to viewer, the least-privileged role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleManager:
		return RoleManager
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleViewer
	}
}
