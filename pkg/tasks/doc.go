// Package tasks implements the to-do tracker. Tasks belong to the account
// that created them; admin and superadmin see and manage every task, other
// roles only their own. A banned or suspended owner keeps read access but
// loses the right to mutate their tasks.
package tasks
