// Package library implements branch, shelf, and librarian management.
// Branches carry an auto-assigned BRnn code and default opening hours;
// shelves derive a coordinate label unique within their branch; librarian
// profiles link an account to a branch under an LB-prefixed staff id.
package library
