package draft

import (
	"github.com/go-faster/errors"

	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
)

var (
	// ErrRowNotFound is returned for events addressed to a row that was
	// removed or never existed.
	ErrRowNotFound = errors.New("row not found")
	// ErrCatalogNotLoaded is returned when a product is chosen before the
	// catalog snapshot has arrived.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
	// ErrUnknownProduct is returned when the product is not in the catalog.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrUnknownSize is returned when the size is not offered for the row's product.
	ErrUnknownSize = errors.New("unknown size")
	// ErrNoProduct is returned when a size is chosen on a row without a product.
	ErrNoProduct = errors.New("no product selected")
)

// Draft is the order being composed. It is not safe for concurrent use;
// callers serialize all events on one goroutine.
type Draft struct {
	catalog   *catalog.Snapshot
	contactID int64

	rows  map[RowID]*Row
	order []RowID
	newID func() RowID
}

// New creates an empty draft. snap may be nil while the catalog is loading.
func New(snap *catalog.Snapshot) *Draft {
	return &Draft{
		catalog: snap,
		rows:    make(map[RowID]*Row),
		newID:   NewRowID,
	}
}

// SetCatalog installs the catalog snapshot once it has loaded.
func (d *Draft) SetCatalog(snap *catalog.Snapshot) {
	d.catalog = snap
}

// Catalog returns the current snapshot, or nil when not loaded.
func (d *Draft) Catalog() *catalog.Snapshot {
	return d.catalog
}

// SetContact selects the contact the order is placed for. Zero clears it.
func (d *Draft) SetContact(id int64) {
	d.contactID = id
}

// ContactID returns the selected contact.
func (d *Draft) ContactID() (int64, bool) {
	return d.contactID, d.contactID != 0
}

// AddRow appends an empty row with quantity 1.
func (d *Draft) AddRow() RowID {
	id := d.newID()
	d.rows[id] = newRow(id)
	d.order = append(d.order, id)
	return id
}

// RemoveRow deletes a row. Later events for it return ErrRowNotFound.
func (d *Draft) RemoveRow(id RowID) error {
	if _, ok := d.rows[id]; !ok {
		return ErrRowNotFound
	}
	delete(d.rows, id)
	for i, rid := range d.order {
		if rid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetProduct selects a product for the row. Choosing a different product
// always clears the size selection.
func (d *Draft) SetProduct(id RowID, productID int64) error {
	r, ok := d.rows[id]
	if !ok {
		return ErrRowNotFound
	}
	if d.catalog == nil {
		return ErrCatalogNotLoaded
	}
	if _, ok := d.catalog.Lookup(productID); !ok {
		return errors.Wrapf(ErrUnknownProduct, "product %d", productID)
	}
	if r.ProductID != productID {
		r.Size = ""
	}
	r.ProductID = productID
	return nil
}

// SizeOptions returns the size choices of the row's product, including the
// synthetic Default option. A row without a product has no options.
func (d *Draft) SizeOptions(id RowID) ([]catalog.SizeOption, error) {
	r, ok := d.rows[id]
	if !ok {
		return nil, ErrRowNotFound
	}
	p, ok := d.catalog.Lookup(r.ProductID)
	if !ok {
		return nil, nil
	}
	return p.SizeOptions(), nil
}

// SetSize selects a size offered by the row's product. An empty name clears
// the selection.
func (d *Draft) SetSize(id RowID, name string) error {
	r, ok := d.rows[id]
	if !ok {
		return ErrRowNotFound
	}
	if name == "" {
		r.Size = ""
		return nil
	}
	if r.ProductID == 0 {
		return ErrNoProduct
	}
	opts, err := d.SizeOptions(id)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if o.Name == name {
			r.Size = name
			return nil
		}
	}
	return errors.Wrapf(ErrUnknownSize, "size %q", name)
}

// SetQuantity sets the row quantity, clamping values below 1 to 1.
func (d *Draft) SetQuantity(id RowID, qty int) error {
	r, ok := d.rows[id]
	if !ok {
		return ErrRowNotFound
	}
	r.Quantity = max(qty, 1)
	return nil
}

// SetCustomization sets the free-text customization note.
func (d *Draft) SetCustomization(id RowID, text string) error {
	r, ok := d.rows[id]
	if !ok {
		return ErrRowNotFound
	}
	r.Customization = text
	return nil
}

// Row returns a copy of the row with the given id.
func (d *Draft) Row(id RowID) (Row, bool) {
	r, ok := d.rows[id]
	if !ok {
		return Row{}, false
	}
	return *r, true
}

// Rows returns copies of all live rows in entry order.
func (d *Draft) Rows() []Row {
	out := make([]Row, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.rows[id])
	}
	return out
}

// Len returns the number of live rows.
func (d *Draft) Len() int {
	return len(d.order)
}

// Summary recomputes the draft total from the current rows.
func (d *Draft) Summary() Summary {
	return Recompute(d.catalog, d.Rows())
}
