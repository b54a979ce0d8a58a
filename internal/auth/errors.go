package auth

import "errors"

var (
	// ErrUserAlreadyExists is returned by Register for a taken username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned by the guard for a missing or bad token,
	// or a token whose subject no longer exists.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("insufficient role")
	// ErrInvalidToken is internal to token verification and is reported to
	// clients as ErrUnauthenticated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)
