package session

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
)

func signedIn(t *testing.T) *State {
	t.Helper()
	s := New()
	s.SignIn(auth.Session{
		Credentials: auth.Credentials{Access: "a", Refresh: "r"},
		User:        auth.User{ID: 1, Username: "desk"},
	})
	return s
}

func TestNew(t *testing.T) {
	s := New()
	assert.Equal(t, ViewLogin, s.View())
	assert.False(t, s.Authenticated())
}

func TestSignIn(t *testing.T) {
	s := New()
	before := s.Epoch()
	s.SignIn(auth.Session{Credentials: auth.Credentials{Access: "a"}, User: auth.User{Username: "desk"}})

	assert.True(t, s.Authenticated())
	assert.Equal(t, ViewDashboard, s.View())
	assert.Equal(t, "desk", s.User().Username)
	assert.False(t, s.Current(before))
}

func TestTeardown(t *testing.T) {
	s := signedIn(t)
	e := s.BeginOrder()

	snap, err := catalog.NewSnapshot([]catalog.Product{{ID: 1, Name: "Mug", BasePrice: decimal.NewFromInt(5)}})
	require.NoError(t, err)
	s.SetCatalog(snap)
	s.SetContacts([]contact.Contact{{ID: 3}})
	s.SetStats(&dashboard.Stats{Orders: 4})

	s.Teardown()

	assert.False(t, s.Authenticated())
	assert.Equal(t, auth.Credentials{}, s.Credentials())
	assert.Equal(t, auth.User{}, s.User())
	assert.Nil(t, s.Catalog())
	assert.Empty(t, s.Contacts())
	assert.Nil(t, s.Stats())
	assert.Equal(t, ViewLogin, s.View())
	assert.False(t, s.Current(e), "results from before teardown must be stale")
}

func TestBeginOrder(t *testing.T) {
	s := signedIn(t)
	first := s.BeginOrder()
	s.SetContacts([]contact.Contact{{ID: 3, FirstName: "Ada"}})

	c, ok := s.Contact(3)
	require.True(t, ok)
	assert.Equal(t, "Ada", c.FirstName)
	_, ok = s.Contact(4)
	assert.False(t, ok)

	second := s.BeginOrder()
	assert.NotEqual(t, first, second)
	assert.True(t, s.Current(second))
	assert.False(t, s.Current(first))
	assert.Empty(t, s.Contacts())
	assert.Equal(t, ViewOrder, s.View())
}

func TestEndOrder(t *testing.T) {
	s := signedIn(t)
	e := s.BeginOrder()
	s.EndOrder()

	assert.Equal(t, ViewConfirmation, s.View())
	assert.Nil(t, s.Catalog())
	assert.False(t, s.Current(e))
	assert.True(t, s.Authenticated())
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "order", ViewOrder.String())
	assert.Equal(t, "unknown", View(42).String())
}

func TestShowOrder(t *testing.T) {
	s := signedIn(t)
	e := s.Epoch()
	s.ShowOrder()

	assert.Equal(t, ViewConfirmation, s.View())
	assert.False(t, s.Current(e))
	assert.True(t, s.Authenticated())
}
