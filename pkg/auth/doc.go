// Package auth verifies the session credential on protected routes and
// re-attaches its claims to the request context as the actor identity.
//
// Route groups chain three middlewares: jwtauth verification (cookie or
// bearer token), the jwtauth authenticator, and ActorMiddleware, which decodes
// the extra claims into an Actor value retrievable with ActorFromContext.
package auth
