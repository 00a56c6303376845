// Package rbac is the single source of truth for role-based access decisions.
//
// Every role list that was previously duplicated across handlers lives here as
// one action-to-allowed-roles table. Decisions are pure: given an actor and a
// requested action on a target, CanPerform returns allow or deny with no
// external state. Unknown roles and unknown actions always deny.
package rbac
