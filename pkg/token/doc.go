// Package token issues and verifies the signed session credential.
//
// A session is a single HS256 JWT carrying the actor identity (id, name,
// role, email, privilegedId, createdBy) as extra claims, valid for one year.
// There is no server-side session store: every authenticated request decodes
// the token and re-attaches its claims as the actor identity.
//
// CookieSetter writes the credential as an HTTP-only, SameSite=Strict cookie
// whose max-age matches the token validity.
package token
