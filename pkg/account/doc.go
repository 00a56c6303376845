// Package account implements the account lifecycle: registration, email
// verification, login, profile updates, soft/hard delete, activation, and the
// ban/suspension overlays.
//
// The package follows the repository/service/handle layering used across
// openshelf: AccountRepository abstracts the identity store (Postgres in
// production, in-memory for tests), AccountService orchestrates state
// transitions and consults pkg/rbac before every mutation, and Handle exposes
// the HTTP surface.
//
// Accounts are treated as immutable snapshots. Mutations go through dedicated
// repository calls that apply the transition as a single conditional update,
// so no concurrent reader can observe a partially-applied state.
package account
