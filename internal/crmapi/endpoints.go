package crmapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
)

const (
	loginPath    = "auth/login/"
	productsPath = "products/"
	contactsPath = "contacts/"
	ordersPath   = "orders/"
	statsPath    = "admin/stats/"

	// maxPages bounds how many pages of a paginated list are followed.
	maxPages = 1000
)

// Login exchanges a username and password for access and refresh tokens.
// A refused login returns auth.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	resp, err := c.do(ctx, http.MethodPost, loginPath, encodeLogin(username, password))
	if err != nil {
		return nil, err
	}
	switch {
	case resp.ok():
	case resp.status == http.StatusUnauthorized, resp.status == http.StatusBadRequest:
		return nil, errors.Wrap(auth.ErrInvalidCredentials, "login refused")
	default:
		return nil, &StatusError{
			Method:  http.MethodPost,
			Path:    loginPath,
			Status:  resp.status,
			Message: errorMessage(resp.body),
		}
	}

	s, err := decodeSession(jx.DecodeBytes(resp.body))
	if err != nil {
		return nil, errors.Wrap(err, "decode login response")
	}
	if s.Credentials.Access == "" {
		return nil, errors.New("login response has no access token")
	}
	return s, nil
}

// list reads every page of a list endpoint, following "next" links of
// paginated responses until the last page.
func (c *Client) list(ctx context.Context, path string, item func(d *jx.Decoder) error) error {
	for page := 1; path != ""; page++ {
		if page > maxPages {
			return errors.Errorf("more than %d pages", maxPages)
		}
		data, err := c.call(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		next, err := decodeList(jx.DecodeBytes(data), item)
		if err != nil {
			return errors.Wrapf(err, "decode page %d", page)
		}
		path = next
	}
	return nil
}

// ListProducts returns the catalog with nested size prices.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.list(ctx, productsPath, func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "products")
	}
	return out, nil
}

// ListContacts returns the contacts available for order placement.
func (c *Client) ListContacts(ctx context.Context) ([]contact.Contact, error) {
	var out []contact.Contact
	if err := c.list(ctx, contactsPath, func(d *jx.Decoder) error {
		ct, err := decodeContact(d)
		if err != nil {
			return err
		}
		out = append(out, ct)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "contacts")
	}
	return out, nil
}

// CreateOrder submits an order. Non-success statuses other than 401 are
// returned as *order.RejectedError.
func (c *Client) CreateOrder(ctx context.Context, req order.Request) (*order.SubmittedOrder, error) {
	data, err := c.call(ctx, http.MethodPost, ordersPath, encodeOrderRequest(req))
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, &order.RejectedError{Status: se.Status, Message: se.Message}
		}
		return nil, err
	}

	o, err := decodeSubmittedOrder(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return o, nil
}

// GetOrder returns a stored order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*order.SubmittedOrder, error) {
	path := ordersPath + strconv.FormatInt(id, 10) + "/"
	data, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, errors.Wrapf(order.ErrNotFound, "order %d", id)
		}
		return nil, err
	}

	o, err := decodeSubmittedOrder(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return o, nil
}

// Stats returns the CRM-wide record counts. Non-admin users get
// dashboard.ErrForbidden.
func (c *Client) Stats(ctx context.Context) (*dashboard.Stats, error) {
	data, err := c.call(ctx, http.MethodGet, statsPath, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusForbidden {
			return nil, errors.Wrap(dashboard.ErrForbidden, "stats")
		}
		return nil, err
	}

	s, err := decodeStats(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode stats")
	}
	return s, nil
}
