package rbac

import "github.com/google/uuid"

// Action identifies an operation subject to a policy decision
type Action string

const (
	ActionCreatePrivilegedAccount Action = "create_privileged_account"
	ActionManageBranch            Action = "manage_branch"
	ActionManageLibrarianProfile  Action = "manage_librarian_profile"
	ActionCreateLibrarianProfile  Action = "create_librarian_profile"
	ActionViewElevatedFields      Action = "view_elevated_fields"
	ActionUpdateOwnRecord         Action = "update_own_record"
	ActionUpdateOtherRecord       Action = "update_other_record"
	ActionSoftDelete              Action = "soft_delete"
	ActionActivate                Action = "activate"
	ActionHardDelete              Action = "hard_delete"
	ActionBanAccount              Action = "ban_account"
	ActionSuspendAccount          Action = "suspend_account"
	ActionListAccounts            Action = "list_accounts"
	ActionManageTask              Action = "manage_task"
)

// Actor is the authenticated identity performing a request
type Actor struct {
	ID        uuid.UUID
	Role      Role
	Banned    bool
	Suspended bool
}

// Target is the record being acted upon. OwnerID is uuid.Nil when the
// action has no per-record owner (e.g. listing).
type Target struct {
	OwnerID uuid.UUID
}

// actionRoles grants an action outright to the listed roles.
var actionRoles = map[Action][]Role{
	ActionCreatePrivilegedAccount: {RoleAdmin, RoleSuperadmin},
	ActionManageBranch:            {RoleAdmin, RoleSuperadmin, RoleLibrarian},
	ActionManageLibrarianProfile:  {RoleAdmin, RoleSuperadmin, RoleLibrarian, RoleAssistant},
	ActionCreateLibrarianProfile:  {RoleAdmin, RoleSuperadmin},
	ActionViewElevatedFields:      {RoleAdmin, RoleSuperadmin, RoleLibrarian},
	ActionUpdateOtherRecord:       {RoleAdmin, RoleSuperadmin},
	ActionSoftDelete:              {RoleAdmin, RoleSuperadmin, RoleManager},
	ActionActivate:                {RoleAdmin, RoleSuperadmin, RoleManager},
	ActionHardDelete:              {RoleAdmin, RoleSuperadmin},
	ActionBanAccount:              {RoleAdmin, RoleSuperadmin},
	ActionSuspendAccount:          {RoleAdmin, RoleSuperadmin},
	ActionListAccounts:            {RoleAdmin, RoleSuperadmin, RoleManager},
	ActionManageTask:              {RoleAdmin, RoleSuperadmin},
}

// ownerActions may additionally be performed by the target's owner, provided
// the actor's own account is neither banned nor suspended.
var ownerActions = map[Action]struct{}{
	ActionUpdateOwnRecord: {},
	ActionSoftDelete:      {},
	ActionActivate:        {},
	ActionManageTask:      {},
}

// CanPerform decides whether the actor may perform the action on the target.
// Missing or unrecognized roles always deny.
func CanPerform(actor Actor, action Action, target Target) bool {
	if !actor.Role.IsValid() {
		return false
	}

	for _, allowed := range actionRoles[action] {
		if actor.Role == allowed {
			return true
		}
	}

	if _, ok := ownerActions[action]; ok {
		if actor.ID != uuid.Nil && actor.ID == target.OwnerID {
			// self-service rights are revoked while banned or suspended
			return !actor.Banned && !actor.Suspended
		}
	}

	return false
}
