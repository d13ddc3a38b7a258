package desk

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/draft"
	"github.com/xenking/crm-orderdesk/internal/session"
	"github.com/xenking/crm-orderdesk/internal/view"
)

// requirement is the state a command needs before it can run.
type requirement int

const (
	anyState requirement = iota
	signedOut
	signedIn
	// browsing is signed in with no order in progress.
	browsing
	ordering
)

type command struct {
	usage    string
	summary  string
	requires requirement
	// minArgs is the number of required arguments.
	minArgs int
	run     func(ctx context.Context, args []string) error
	// quit ends the loop after run.
	quit bool
}

type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return "usage: " + e.usage
}

func (c *Controller) commandTable() map[string]command {
	return map[string]command{
		"login": {
			usage: "login <username> <password>", summary: "sign in",
			requires: signedOut, minArgs: 2, run: c.cmdLogin,
		},
		"logout": {
			usage: "logout", summary: "sign out and clear the session",
			requires: signedIn, run: c.cmdLogout,
		},
		"new": {
			usage: "new", summary: "start a new order and load catalog and contacts",
			requires: signedIn, run: c.cmdNew,
		},
		"add": {
			usage: "add", summary: "add an empty row",
			requires: ordering, run: c.cmdAdd,
		},
		"product": {
			usage: "product <row> <product-id>", summary: "choose a row's product (resets its size)",
			requires: ordering, minArgs: 2, run: c.cmdProduct,
		},
		"size": {
			usage: "size <row> [size name]", summary: "choose a row's size, or clear it",
			requires: ordering, minArgs: 1, run: c.cmdSize,
		},
		"qty": {
			usage: "qty <row> <quantity>", summary: "set a row's quantity (at least 1)",
			requires: ordering, minArgs: 2, run: c.cmdQty,
		},
		"note": {
			usage: "note <row> [text]", summary: "set a row's customization",
			requires: ordering, minArgs: 1, run: c.cmdNote,
		},
		"remove": {
			usage: "remove <row>", summary: "remove a row",
			requires: ordering, minArgs: 1, run: c.cmdRemove,
		},
		"contact": {
			usage: "contact <contact-id>", summary: "select the contact the order is for",
			requires: ordering, minArgs: 1, run: c.cmdContact,
		},
		"contacts": {
			usage: "contacts", summary: "list loaded contacts",
			requires: ordering, run: c.cmdContacts,
		},
		"products": {
			usage: "products", summary: "list the catalog",
			requires: ordering, run: c.cmdProducts,
		},
		"submit": {
			usage: "submit", summary: "submit the order",
			requires: ordering, run: c.cmdSubmit,
		},
		"stats": {
			usage: "stats", summary: "load CRM-wide counts (admin only)",
			requires: browsing, run: c.cmdStats,
		},
		"order": {
			usage: "order <order-id>", summary: "show a stored order",
			requires: browsing, minArgs: 1, run: c.cmdOrder,
		},
		"show": {
			usage: "show", summary: "redraw the screen",
			run: func(context.Context, []string) error { return nil },
		},
		"wait": {
			usage: "wait", summary: "wait for pending requests to finish",
			run: c.cmdWait,
		},
		"help": {
			usage: "help", summary: "list commands",
			run: c.cmdHelp,
		},
		"quit": {
			usage: "quit", summary: "exit",
			run: func(context.Context, []string) error { return nil }, quit: true,
		},
	}
}

// dispatch runs one command line and reports whether the loop should end.
func (c *Controller) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := c.commands[name]
	if !ok {
		c.notice = fmt.Sprintf("Unknown command %q, try help.", name)
		return false
	}
	zctx.From(ctx).Debug("Command", zap.String("name", name), zap.Int("args", len(args)))

	if err := c.check(cmd.requires); err != nil {
		c.notice = err.Error()
		return false
	}
	if len(args) < cmd.minArgs {
		c.notice = (&usageError{usage: cmd.usage}).Error()
		return false
	}
	if err := cmd.run(ctx, args); err != nil {
		c.notice = err.Error()
	}
	return cmd.quit
}

func (c *Controller) check(r requirement) error {
	switch r {
	case signedOut:
		if c.state.Authenticated() {
			return errors.New("already signed in, logout first")
		}
	case signedIn:
		if !c.state.Authenticated() {
			return errors.New("sign in first: login <username> <password>")
		}
	case browsing:
		if !c.state.Authenticated() {
			return errors.New("sign in first: login <username> <password>")
		}
		if c.state.View() == session.ViewOrder {
			return errors.New("an order is in progress, submit it or start over with: new")
		}
	case ordering:
		if !c.state.Authenticated() {
			return errors.New("sign in first: login <username> <password>")
		}
		if c.state.View() != session.ViewOrder || c.draft == nil {
			return errors.New("no order in progress, start one with: new")
		}
	}
	return nil
}

// rowID resolves a row argument: a 1-based position or a prefix of the
// row id. Positions win over id prefixes.
func (c *Controller) rowID(arg string) (draft.RowID, error) {
	rows := c.draft.Rows()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(rows) {
			return "", errors.Errorf("no row %d", n)
		}
		return rows[n-1].ID, nil
	}

	var found draft.RowID
	for _, r := range rows {
		if !strings.HasPrefix(string(r.ID), arg) {
			continue
		}
		if found != "" {
			return "", errors.Errorf("row %q is ambiguous", arg)
		}
		found = r.ID
	}
	if found == "" {
		return "", errors.Errorf("no row %q", arg)
	}
	return found, nil
}

func (c *Controller) cmdLogin(ctx context.Context, args []string) error {
	c.startLogin(ctx, args[0], strings.Join(args[1:], " "))
	c.notice = "Signing in..."
	return nil
}

func (c *Controller) cmdLogout(context.Context, []string) error {
	c.state.Teardown()
	c.draft = nil
	c.submitted = nil
	c.notice = "Signed out."
	return nil
}

func (c *Controller) cmdNew(ctx context.Context, _ []string) error {
	c.state.BeginOrder()
	c.draft = draft.New(nil)
	c.submitted = nil
	c.startLoad(ctx)
	c.notice = "Loading catalog and contacts..."
	return nil
}

func (c *Controller) cmdAdd(context.Context, []string) error {
	id := c.draft.AddRow()
	c.notice = fmt.Sprintf("Added row %d (%s).", c.draft.Len(), id.Short())
	return nil
}

func (c *Controller) cmdProduct(_ context.Context, args []string) error {
	id, err := c.rowID(args[0])
	if err != nil {
		return err
	}
	productID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errors.Errorf("invalid product id %q", args[1])
	}
	return describe(c.draft.SetProduct(id, productID))
}

func (c *Controller) cmdSize(_ context.Context, args []string) error {
	id, err := c.rowID(args[0])
	if err != nil {
		return err
	}
	return describe(c.draft.SetSize(id, strings.Join(args[1:], " ")))
}

// cmdQty clamps unparsable and non-positive quantities to 1.
func (c *Controller) cmdQty(_ context.Context, args []string) error {
	id, err := c.rowID(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		qty = 1
	}
	return describe(c.draft.SetQuantity(id, qty))
}

func (c *Controller) cmdNote(_ context.Context, args []string) error {
	id, err := c.rowID(args[0])
	if err != nil {
		return err
	}
	return describe(c.draft.SetCustomization(id, strings.Join(args[1:], " ")))
}

func (c *Controller) cmdRemove(_ context.Context, args []string) error {
	id, err := c.rowID(args[0])
	if err != nil {
		return err
	}
	if err := c.draft.RemoveRow(id); err != nil {
		return describe(err)
	}
	c.notice = "Removed row " + id.Short() + "."
	return nil
}

func (c *Controller) cmdContact(_ context.Context, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return errors.Errorf("invalid contact id %q", args[0])
	}
	if _, ok := c.state.Contact(id); !ok {
		return errors.Errorf("unknown contact %d, see: contacts", id)
	}
	c.draft.SetContact(id)
	return nil
}

func (c *Controller) cmdContacts(context.Context, []string) error {
	return view.RenderContacts(c.out, c.state.Contacts())
}

func (c *Controller) cmdProducts(context.Context, []string) error {
	return view.RenderProducts(c.out, c.draft.Catalog())
}

func (c *Controller) cmdSubmit(ctx context.Context, _ []string) error {
	if c.submitting {
		return errors.New("submission already in progress")
	}
	contactID, _ := c.draft.ContactID()
	c.startSubmit(ctx, contactID, c.draft.Rows())
	c.notice = "Submitting..."
	return nil
}

func (c *Controller) cmdStats(ctx context.Context, _ []string) error {
	if role := c.state.User().Role; role != "" && role != dashboard.RoleAdmin {
		return errors.New("stats require the admin role")
	}
	c.startStats(ctx)
	c.notice = "Loading stats..."
	return nil
}

func (c *Controller) cmdOrder(ctx context.Context, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return errors.Errorf("invalid order id %q", args[0])
	}
	c.startOrderLookup(ctx, id)
	c.notice = fmt.Sprintf("Loading order %d...", id)
	return nil
}

func (c *Controller) cmdWait(context.Context, []string) error {
	c.waiting = true
	return nil
}

func (c *Controller) cmdHelp(context.Context, []string) error {
	return writeHelp(c.out, c.commands)
}

func writeHelp(w io.Writer, commands map[string]command) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(&b, "  %-28s %s\n", cmd.usage, cmd.summary)
	}
	b.WriteString("Rows are addressed by position (1, 2, ...) or by id prefix.\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// describe turns draft errors into operator-facing messages.
func describe(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, draft.ErrCatalogNotLoaded):
		return errors.New("catalog is still loading, try again shortly")
	case errors.Is(err, draft.ErrUnknownProduct):
		return errors.New("unknown product, see: products")
	case errors.Is(err, draft.ErrUnknownSize):
		return errors.New("size not offered for this product")
	case errors.Is(err, draft.ErrNoProduct):
		return errors.New("choose a product for the row first")
	case errors.Is(err, draft.ErrRowNotFound):
		return errors.New("row no longer exists")
	default:
		return err
	}
}
