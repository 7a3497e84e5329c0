// Package accounts implements the credential and session authority for a
// web application: account registration, credential
// authentication, bearer token issuance and validation, email ownership
// verification, and password recovery.
//
// Every lifecycle operation returns an Outcome value rather than an error,
// so callers branch on a closed set of status tags and stable error codes.
// Infrastructure failures that are not part of the lifecycle contract use
// github.com/goliatone/go-errors.
package accounts
