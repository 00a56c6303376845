package rbac

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	role, ok = ParseRole("librarian")
	assert.True(t, ok)
	assert.Equal(t, RoleLibrarian, role)

	_, ok = ParseRole("wizard")
	assert.False(t, ok)

	// role strings are exact, not case-folded
	_, ok = ParseRole("Admin")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestIsPrivileged(t *testing.T) {
	assert.True(t, RoleAdmin.IsPrivileged())
	assert.True(t, RoleSuperadmin.IsPrivileged())
	assert.True(t, RoleManager.IsPrivileged())

	assert.False(t, RoleStaff.IsPrivileged())
	assert.False(t, RoleLibrarian.IsPrivileged())
	assert.False(t, RoleRegular.IsPrivileged())
	assert.False(t, RoleStudent.IsPrivileged())
}

func TestCanPerform_RoleTable(t *testing.T) {
	admin := Actor{ID: uuid.New(), Role: RoleAdmin}
	manager := Actor{ID: uuid.New(), Role: RoleManager}
	librarian := Actor{ID: uuid.New(), Role: RoleLibrarian}
	regular := Actor{ID: uuid.New(), Role: RoleRegular}

	target := Target{OwnerID: uuid.New()}

	assert.True(t, CanPerform(admin, ActionHardDelete, target))
	assert.True(t, CanPerform(admin, ActionBanAccount, target))
	assert.False(t, CanPerform(manager, ActionHardDelete, target))
	assert.False(t, CanPerform(manager, ActionBanAccount, target))
	assert.True(t, CanPerform(manager, ActionSoftDelete, target))
	assert.True(t, CanPerform(manager, ActionListAccounts, Target{}))

	assert.True(t, CanPerform(librarian, ActionManageBranch, Target{}))
	assert.True(t, CanPerform(librarian, ActionViewElevatedFields, Target{}))
	assert.False(t, CanPerform(librarian, ActionCreateLibrarianProfile, Target{}))

	assert.False(t, CanPerform(regular, ActionSoftDelete, target))
	assert.False(t, CanPerform(regular, ActionListAccounts, Target{}))
}

func TestCanPerform_OwnershipGrant(t *testing.T) {
	id := uuid.New()
	owner := Actor{ID: id, Role: RoleRegular}
	own := Target{OwnerID: id}
	other := Target{OwnerID: uuid.New()}

	assert.True(t, CanPerform(owner, ActionUpdateOwnRecord, own))
	assert.True(t, CanPerform(owner, ActionSoftDelete, own))
	assert.False(t, CanPerform(owner, ActionUpdateOwnRecord, other))
	assert.False(t, CanPerform(owner, ActionHardDelete, own))
}

func TestCanPerform_BannedLosesOwnershipOnly(t *testing.T) {
	id := uuid.New()
	banned := Actor{ID: id, Role: RoleRegular, Banned: true}
	suspended := Actor{ID: id, Role: RoleRegular, Suspended: true}
	own := Target{OwnerID: id}

	assert.False(t, CanPerform(banned, ActionUpdateOwnRecord, own))
	assert.False(t, CanPerform(suspended, ActionUpdateOwnRecord, own))

	// a banned admin keeps the role grant; only the ownership path is revoked
	bannedAdmin := Actor{ID: uuid.New(), Role: RoleAdmin, Banned: true}
	assert.True(t, CanPerform(bannedAdmin, ActionUpdateOtherRecord, own))
}

func TestCanPerform_InvalidRoleDenied(t *testing.T) {
	id := uuid.New()
	impostor := Actor{ID: id, Role: Role("wizard")}
	none := Actor{ID: id}

	assert.False(t, CanPerform(impostor, ActionUpdateOwnRecord, Target{OwnerID: id}))
	assert.False(t, CanPerform(none, ActionSoftDelete, Target{OwnerID: id}))
}

func TestCanPerform_UnknownActionDenied(t *testing.T) {
	admin := Actor{ID: uuid.New(), Role: RoleAdmin}
	assert.False(t, CanPerform(admin, Action("fly"), Target{}))
}
