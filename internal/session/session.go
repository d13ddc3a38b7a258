// Package session holds the application state owned by the desk
// controller: credentials, the active view and the lists cached for the
// current order session.
package session

import (
	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
)

// View is the screen currently shown to the operator.
type View int

const (
	ViewLogin View = iota
	ViewDashboard
	ViewOrder
	ViewConfirmation
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewDashboard:
		return "dashboard"
	case ViewOrder:
		return "order"
	case ViewConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// Epoch identifies a generation of state. Every transition that makes
// in-flight results irrelevant starts a new epoch; results tagged with an
// older one are ignored.
type Epoch uint64

// State is not safe for concurrent use. It is owned by a single goroutine.
type State struct {
	credentials auth.Credentials
	user        auth.User
	view        View

	contacts []contact.Contact
	catalog  *catalog.Snapshot
	stats    *dashboard.Stats

	epoch Epoch
}

// New returns a signed-out state on the login view.
func New() *State {
	return &State{view: ViewLogin}
}

// SignIn stores the session credentials and moves to the dashboard.
func (s *State) SignIn(sess auth.Session) {
	s.credentials = sess.Credentials
	s.user = sess.User
	s.view = ViewDashboard
	s.epoch++
}

// Teardown clears credentials, user, cached contacts, catalog and stats, and
// returns to the login view. Late results from before the teardown are
// invalidated.
func (s *State) Teardown() {
	s.credentials = auth.Credentials{}
	s.user = auth.User{}
	s.contacts = nil
	s.catalog = nil
	s.stats = nil
	s.view = ViewLogin
	s.epoch++
}

// BeginOrder starts a new order session. The previous catalog and contact
// list are discarded and must be loaded again under the returned epoch.
func (s *State) BeginOrder() Epoch {
	s.catalog = nil
	s.contacts = nil
	s.view = ViewOrder
	s.epoch++
	return s.epoch
}

// EndOrder finishes the order session and shows the confirmation.
func (s *State) EndOrder() {
	s.catalog = nil
	s.view = ViewConfirmation
	s.epoch++
}

// ShowOrder leaves the dashboard or a confirmation to display a stored
// order. It does not end an order session in progress.
func (s *State) ShowOrder() {
	s.view = ViewConfirmation
	s.epoch++
}

// Epoch returns the current epoch.
func (s *State) Epoch() Epoch { return s.epoch }

// Current reports whether e is the current epoch.
func (s *State) Current(e Epoch) bool { return e == s.epoch }

// Authenticated reports whether an access token is held.
func (s *State) Authenticated() bool { return s.credentials.Access != "" }

func (s *State) Credentials() auth.Credentials { return s.credentials }

func (s *State) User() auth.User { return s.user }

func (s *State) View() View { return s.view }

// Catalog returns the order session's snapshot, nil while loading.
func (s *State) Catalog() *catalog.Snapshot { return s.catalog }

func (s *State) SetCatalog(snap *catalog.Snapshot) { s.catalog = snap }

func (s *State) Contacts() []contact.Contact { return s.contacts }

func (s *State) SetContacts(cs []contact.Contact) { s.contacts = cs }

// Contact looks up a cached contact by id.
func (s *State) Contact(id int64) (contact.Contact, bool) {
	for _, c := range s.contacts {
		if c.ID == id {
			return c, true
		}
	}
	return contact.Contact{}, false
}

// Stats returns the last dashboard figures, nil when not loaded.
func (s *State) Stats() *dashboard.Stats { return s.stats }

func (s *State) SetStats(st *dashboard.Stats) { s.stats = st }
