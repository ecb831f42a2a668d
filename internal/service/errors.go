package service

import "errors"

// Expected domain failures. Callers classify with errors.Is instead of
// matching message text; the messages themselves are the user-visible
// GraphQL error strings.
var (
	// ErrUnauthenticated indicates an operation requiring a current user
	// ran without one.
	ErrUnauthenticated = errors.New("Unauthenticated!")
	// ErrNoSuchUser indicates a login attempt against an unknown email.
	ErrNoSuchUser = errors.New("No such user found")
	// ErrInvalidPassword indicates a login attempt with a wrong password.
	ErrInvalidPassword = errors.New("Invalid password")
	// ErrEmailTaken indicates a signup with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNoFile indicates a mutation requiring a file payload got none.
	ErrNoFile = errors.New("no file provided")
)
