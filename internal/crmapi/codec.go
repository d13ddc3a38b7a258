package crmapi

import (
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
)

const maxErrorMessage = 200

// decodeList decodes either a bare JSON array or a paginated envelope
// {"results": [...], "next": "..."}. It returns the next page link, empty
// on the last page.
func decodeList(d *jx.Decoder, item func(d *jx.Decoder) error) (next string, _ error) {
	switch tt := d.Next(); tt {
	case jx.Array:
		return "", d.Arr(item)
	case jx.Object:
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "results":
				err = d.Arr(item)
			case "next":
				next, err = decodeString(d)
			default:
				return d.Skip()
			}
			if err != nil {
				return errors.Wrapf(err, "%q", key)
			}
			return nil
		})
		return next, err
	default:
		return "", errors.Errorf("unexpected %s, want array", tt)
	}
}

// decodeDecimal accepts decimals encoded as JSON strings ("100.00") or
// numbers. Null decodes as zero.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch tt := d.Next(); tt {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(n))
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.Errorf("unexpected %s, want decimal", tt)
	}
}

func decodeInt64(d *jx.Decoder) (int64, error) {
	if d.Next() == jx.Null {
		return 0, d.Null()
	}
	return d.Int64()
}

func decodeString(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func decodeSize(d *jx.Decoder) (catalog.Size, error) {
	var s catalog.Size
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "size_name":
			s.Name, err = decodeString(d)
		case "price":
			s.Price, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	return s, err
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = decodeInt64(d)
		case "name":
			p.Name, err = decodeString(d)
		case "sku":
			p.SKU, err = decodeString(d)
		case "base_price":
			p.BasePrice, err = decodeDecimal(d)
		case "offer_percent":
			p.OfferPercent, err = decodeDecimal(d)
		case "sizes":
			if d.Next() == jx.Null {
				return d.Null()
			}
			err = d.Arr(func(d *jx.Decoder) error {
				s, err := decodeSize(d)
				if err != nil {
					return err
				}
				p.Sizes = append(p.Sizes, s)
				return nil
			})
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	return p, err
}

func decodeContact(d *jx.Decoder) (contact.Contact, error) {
	var c contact.Contact
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			c.ID, err = decodeInt64(d)
		case "first_name":
			c.FirstName, err = decodeString(d)
		case "last_name":
			c.LastName, err = decodeString(d)
		case "email":
			c.Email, err = decodeString(d)
		case "phone":
			c.Phone, err = decodeString(d)
		case "organization_name":
			c.OrganizationName, err = decodeString(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	return c, err
}

func decodeUser(d *jx.Decoder) (auth.User, error) {
	var u auth.User
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			u.ID, err = decodeInt64(d)
		case "username":
			u.Username, err = decodeString(d)
		case "email":
			u.Email, err = decodeString(d)
		case "role":
			u.Role, err = decodeString(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	return u, err
}

func decodeSession(d *jx.Decoder) (*auth.Session, error) {
	var s auth.Session
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "access":
			s.Credentials.Access, err = decodeString(d)
		case "refresh":
			s.Credentials.Refresh, err = decodeString(d)
		case "user":
			s.User, err = decodeUser(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeSubmittedItem(d *jx.Decoder) (order.SubmittedItem, error) {
	var it order.SubmittedItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product_name":
			it.ProductName, err = decodeString(d)
		case "size_name":
			it.SizeName, err = decodeString(d)
		case "unit_price":
			it.UnitPrice, err = decodeDecimal(d)
		case "qty":
			it.Qty, err = d.Int()
		case "line_total":
			it.LineTotal, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	return it, err
}

// decodeSubmittedOrder decodes both the creation response and the order
// detail. The detail carries no "order_total"; its total is the sum of the
// server's line totals.
func decodeSubmittedOrder(d *jx.Decoder) (*order.SubmittedOrder, error) {
	var (
		o        order.SubmittedOrder
		hasTotal bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = decodeInt64(d)
		case "order_no":
			o.OrderNo, err = decodeString(d)
		case "contact_name":
			o.ContactName, err = decodeString(d)
		case "order_total":
			hasTotal = true
			o.Total, err = decodeDecimal(d)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				it, err := decodeSubmittedItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, it)
				return nil
			})
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasTotal {
		o.Total = decimal.Zero
		for _, it := range o.Items {
			o.Total = o.Total.Add(it.LineTotal)
		}
	}
	return &o, nil
}

func decodeStats(d *jx.Decoder) (*dashboard.Stats, error) {
	var s dashboard.Stats
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "total_organizations":
			s.Organizations, err = decodeInt64(d)
		case "total_contacts":
			s.Contacts, err = decodeInt64(d)
		case "total_products":
			s.Products, err = decodeInt64(d)
		case "total_orders":
			s.Orders, err = decodeInt64(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "%q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func encodeLogin(username, password string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("username")
	e.Str(username)
	e.FieldStart("password")
	e.Str(password)
	e.ObjEnd()
	return e.Bytes()
}

func encodeOrderRequest(req order.Request) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("contact")
	e.Int64(req.ContactID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range req.Items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Int64(it.ProductID)
		e.FieldStart("size_name")
		e.Str(it.SizeName)
		e.FieldStart("qty")
		e.Int(it.Qty)
		e.FieldStart("customization")
		e.Str(it.Customization)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

// errorMessage extracts a human-readable message from an error body:
// the "error" or "detail" field when present, the raw body otherwise.
func errorMessage(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	if d.Next() == jx.Object {
		_ = d.Obj(func(d *jx.Decoder, key string) error {
			if msg == "" && (key == "error" || key == "detail") && d.Next() == jx.String {
				s, err := d.Str()
				msg = s
				return err
			}
			return d.Skip()
		})
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return truncate(msg, maxErrorMessage)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
