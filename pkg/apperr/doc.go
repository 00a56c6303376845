// Package apperr provides structured error handling with error codes for openshelf.
//
// Every failure path in the services resolves to one of a small set of typed
// error codes, each with a fixed HTTP status mapping. Handlers never inspect
// raw storage errors; repositories and services wrap them here first.
//
// Creating errors:
//
//	err := apperr.New(apperr.CodeNotFound, "account not found")
//	err := apperr.Wrap(dbErr, apperr.CodeInternal, "failed to update account")
//	err := apperr.InvalidInput("email", "is required")
//
// Inspecting errors:
//
//	if apperr.IsCode(err, apperr.CodeConflict) { ... }
//	status := apperr.MapCodeToHTTPStatus(apperr.GetCode(err))
package apperr
