// Package notification delivers outbound notices, currently only the email
// verification message.
//
// Delivery is fire-and-forget from the caller's point of view: the account
// lifecycle never blocks on, or fails because of, a notification error.
// Failures are logged by the notifier and retries are the sender's concern.
package notification
