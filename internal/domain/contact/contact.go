package contact

import (
	"context"
	"strings"
)

// Contact is a person an order can be placed for.
type Contact struct {
	ID               int64
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	OrganizationName string
}

// FullName joins first and last name, skipping empty parts.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Lister provides the contact selection list.
type Lister interface {
	ListContacts(ctx context.Context) ([]Contact, error)
}
