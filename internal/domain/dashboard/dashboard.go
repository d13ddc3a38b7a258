// Package dashboard holds the CRM-wide figures shown to administrators.
package dashboard

import (
	"context"

	"github.com/go-faster/errors"
)

// RoleAdmin is the user role allowed to read Stats.
const RoleAdmin = "admin"

// ErrForbidden is returned when the signed-in user may not read Stats.
var ErrForbidden = errors.New("admin role required")

// Stats counts the records of the CRM.
type Stats struct {
	Organizations int64
	Contacts      int64
	Products      int64
	Orders        int64
}

// Reader reads the dashboard figures.
type Reader interface {
	Stats(ctx context.Context) (*Stats, error)
}
