package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"

	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
	"github.com/xenking/crm-orderdesk/internal/domain/pricing"
	"github.com/xenking/crm-orderdesk/internal/session"
)

const placeholder = "-"

// Render writes the screen to w.
func Render(w io.Writer, s Screen) error {
	var b strings.Builder
	if s.User != "" {
		fmt.Fprintf(&b, "== %s [%s] ==\n", s.View, s.User)
	} else {
		fmt.Fprintf(&b, "== %s ==\n", s.View)
	}

	switch s.View {
	case session.ViewLogin:
		b.WriteString("Sign in with: login <username> <password>\n")
	case session.ViewDashboard:
		if s.Stats != nil {
			fmt.Fprintf(&b, "Organizations: %d  Contacts: %d  Products: %d  Orders: %d\n",
				s.Stats.Organizations, s.Stats.Contacts, s.Stats.Products, s.Stats.Orders)
		}
		b.WriteString("Start an order with: new\n")
	case session.ViewOrder:
		if s.Order != nil {
			if err := renderOrder(&b, s.Order); err != nil {
				return err
			}
		}
	case session.ViewConfirmation:
		if s.Confirmation != nil {
			if err := RenderConfirmation(&b, s.Confirmation); err != nil {
				return err
			}
		}
	}
	if s.Notice != "" {
		fmt.Fprintf(&b, "! %s\n", s.Notice)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "write screen")
	}
	return nil
}

func renderOrder(w io.Writer, o *OrderScreen) error {
	if !o.CatalogLoaded {
		fmt.Fprintln(w, "Catalog loading...")
	}
	contactName := o.Contact
	if contactName == "" {
		contactName = placeholder
	}
	fmt.Fprintf(w, "Contact: %s\n", contactName)

	if len(o.Rows) == 0 {
		fmt.Fprintln(w, "No rows. Add one with: add")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tID\tPRODUCT\tSIZE\tQTY\tUNIT\tTOTAL\tNOTE")
		for _, r := range o.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				r.Index, r.ID,
				orPlaceholder(r.Product), orPlaceholder(r.Size),
				r.Qty,
				orPlaceholder(r.Unit), orPlaceholder(r.LineTotal),
				r.Customization,
			)
		}
		if err := tw.Flush(); err != nil {
			return errors.Wrap(err, "flush rows")
		}
		for _, r := range o.Rows {
			if r.Size == "" && len(r.Options) > 0 {
				fmt.Fprintf(w, "Row %d sizes: %s\n", r.Index, strings.Join(r.Options, ", "))
			}
		}
	}
	fmt.Fprintf(w, "Total: %s\n", o.Total)
	return nil
}

// RenderConfirmation writes the server's order figures as returned.
func RenderConfirmation(w io.Writer, o *order.SubmittedOrder) error {
	if o.OrderNo != "" {
		fmt.Fprintf(w, "Order %s created", o.OrderNo)
	} else {
		fmt.Fprintf(w, "Order #%d created", o.ID)
	}
	if o.ContactName != "" {
		fmt.Fprintf(w, " for %s", o.ContactName)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSIZE\tQTY\tUNIT\tTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			it.ProductName, orPlaceholder(it.SizeName), it.Qty,
			pricing.Format(it.UnitPrice), pricing.Format(it.LineTotal),
		)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush items")
	}
	_, err := fmt.Fprintf(w, "Order total: %s\n", pricing.Format(o.Total))
	return err
}

// RenderProducts lists the catalog with every size option.
func RenderProducts(w io.Writer, snap *catalog.Snapshot) error {
	if snap == nil {
		_, err := fmt.Fprintln(w, "Catalog not loaded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSKU\tOFFER\tSIZES")
	for _, p := range snap.Products() {
		offer := placeholder
		if p.OfferPercent.IsPositive() {
			offer = p.OfferPercent.String() + "%"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, orPlaceholder(p.SKU), offer, strings.Join(sizeOptions(p), ", "))
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush products")
	}
	return nil
}

// RenderContacts lists the contacts available for selection.
func RenderContacts(w io.Writer, contacts []contact.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No contacts loaded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tORGANIZATION\tEMAIL")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			c.ID, orPlaceholder(c.FullName()), orPlaceholder(c.OrganizationName), orPlaceholder(c.Email))
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush contacts")
	}
	return nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
