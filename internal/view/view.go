// Package view projects desk state into a printable screen.
package view

import (
	"strconv"

	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/draft"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
	"github.com/xenking/crm-orderdesk/internal/domain/pricing"
	"github.com/xenking/crm-orderdesk/internal/session"
)

// Screen is everything that is rendered for one event. It holds only
// display strings and is derived entirely from state.
type Screen struct {
	View   session.View
	User   string
	Notice string

	// Order is set on the order view.
	Order *OrderScreen
	// Confirmation is set on the confirmation view.
	Confirmation *order.SubmittedOrder
	// Stats is set on the dashboard once loaded.
	Stats *dashboard.Stats
}

// OrderScreen is the projection of a draft.
type OrderScreen struct {
	CatalogLoaded bool
	Contact       string
	Rows          []RowLine
	Total         string
}

// RowLine is the projection of one draft row. Unit and LineTotal are empty
// when the row has no price.
type RowLine struct {
	Index         int
	ID            string
	Product       string
	Size          string
	Options       []string
	Qty           int
	Customization string
	Unit          string
	LineTotal     string
}

// Input groups what a Screen is projected from.
type Input struct {
	State     *session.State
	Draft     *draft.Draft
	Submitted *order.SubmittedOrder
	Notice    string
}

// Project derives the screen from state. It has no side effects.
func Project(in Input) Screen {
	s := Screen{
		View:   in.State.View(),
		User:   in.State.User().Username,
		Notice: in.Notice,
	}
	switch s.View {
	case session.ViewDashboard:
		s.Stats = in.State.Stats()
	case session.ViewOrder:
		if in.Draft != nil {
			s.Order = projectOrder(in.State, in.Draft)
		}
	case session.ViewConfirmation:
		s.Confirmation = in.Submitted
	}
	return s
}

func projectOrder(st *session.State, d *draft.Draft) *OrderScreen {
	snap := d.Catalog()
	summary := d.Summary()

	out := &OrderScreen{
		CatalogLoaded: snap != nil,
		Total:         pricing.Format(summary.Total),
	}
	if id, ok := d.ContactID(); ok {
		out.Contact = "#" + strconv.FormatInt(id, 10)
		if c, ok := st.Contact(id); ok {
			out.Contact = contactLabel(c.FullName(), c.OrganizationName)
		}
	}

	for i, r := range d.Rows() {
		line := RowLine{
			Index:         i + 1,
			ID:            r.ID.Short(),
			Size:          r.Size,
			Qty:           r.Quantity,
			Customization: r.Customization,
		}
		if r.ProductID != 0 {
			line.Product = "#" + strconv.FormatInt(r.ProductID, 10)
			if p, ok := snap.Lookup(r.ProductID); ok {
				line.Product = p.Name
				line.Options = sizeOptions(p)
			}
		}
		if price, ok := summary.Line(r.ID); ok {
			line.Unit = pricing.Format(price.Unit)
			line.LineTotal = pricing.Format(price.LineTotal)
		}
		out.Rows = append(out.Rows, line)
	}
	return out
}

func sizeOptions(p catalog.Product) []string {
	opts := p.SizeOptions()
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Name+" "+pricing.Format(o.Price))
	}
	return out
}

func contactLabel(name, org string) string {
	if org == "" {
		return name
	}
	if name == "" {
		return org
	}
	return name + " (" + org + ")"
}
