package auth

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrSessionExpired is returned when the server rejects the credential
	// of an authenticated call. The local session must be torn down.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidCredentials is returned when a login attempt is refused.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the signed-in operator.
type User struct {
	ID       int64
	Username string
	Email    string
	Role     string
}

// Credentials holds the bearer tokens issued at login.
type Credentials struct {
	Access  string
	Refresh string
}

// Session is the result of a successful login.
type Session struct {
	Credentials Credentials
	User        User
}

// Authenticator exchanges a username and password for a Session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*Session, error)
}
