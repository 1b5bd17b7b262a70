// Package cart holds the per-session shopping cart. A Ledger is mutated only
// through Add, Remove, AdjustQuantity, RemoveLines and Clear; it is never
// persisted.
package cart

import (
	"slices"
	"sync"

	id "storefront/pkg/domain"
)

// Product is the catalog snapshot handed to Add. PriceText, when set, is a
// formatted price such as "₹1,299" and takes precedence over Price.
type Product struct {
	ID        id.ProductID
	Name      string
	Image     string
	Price     id.Amount
	PriceText string
}

func (p Product) amount() id.Amount {
	if p.PriceText != "" {
		return id.ParseAmountText(p.PriceText)
	}
	return p.Price
}

// Line is one product in the cart. Name, Price and Image are copied when the
// product is first added and do not follow later catalog changes.
type Line struct {
	ProductID id.ProductID `json:"id"`
	Name      string       `json:"name"`
	Price     id.Amount    `json:"price"`
	Image     string       `json:"image"`
	Quantity  int          `json:"quantity"`
}

func (l Line) LineTotal() id.Amount {
	return l.Price * id.Amount(l.Quantity)
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	lines map[id.ProductID]*Line
	order []id.ProductID
	open  bool
}

func NewLedger() *Ledger {
	return &Ledger{lines: make(map[id.ProductID]*Line)}
}

// Add increments the quantity of an existing line by delta, or inserts a new
// line with quantity 1. A delta below 1 counts as 1. Add opens the cart.
func (l *Ledger) Add(p Product, delta int) Line {
	if delta < 1 {
		delta = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.open = true
	if line, ok := l.lines[p.ID]; ok {
		line.Quantity += delta
		return *line
	}
	line := &Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.amount(),
		Image:     p.Image,
		Quantity:  1,
	}
	l.lines[p.ID] = line
	l.order = append(l.order, p.ID)
	return *line
}

// Remove deletes the line whatever its quantity. Missing lines are ignored.
func (l *Ledger) Remove(productID id.ProductID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.lines[productID]; !ok {
		return
	}
	delete(l.lines, productID)
	for i, pid := range l.order {
		if pid == productID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// AdjustQuantity moves the quantity by delta with a floor of 1; it never
// removes the line. The second return is false if no line exists.
func (l *Ledger) AdjustQuantity(productID id.ProductID, delta int) (Line, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line, ok := l.lines[productID]
	if !ok {
		return Line{}, false
	}
	line.Quantity = max(1, line.Quantity+delta)
	return *line, true
}

func (l *Ledger) Subtotal() id.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total id.Amount
	for _, line := range l.lines {
		total += line.LineTotal()
	}
	return total
}

// Lines returns copies of the lines in insertion order.
func (l *Ledger) Lines() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Line, 0, len(l.order))
	for _, pid := range l.order {
		out = append(out, *l.lines[pid])
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Count is the total number of units across all lines.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

// RemoveLines takes ordered lines back out of the cart: each line's quantity
// is reduced by the ordered quantity and dropped once nothing is left. Lines
// added or topped up after the snapshot was taken survive.
func (l *Ledger) RemoveLines(ordered []Line) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range ordered {
		line, ok := l.lines[o.ProductID]
		if !ok {
			continue
		}
		line.Quantity -= o.Quantity
		if line.Quantity > 0 {
			continue
		}
		delete(l.lines, o.ProductID)
		l.order = slices.DeleteFunc(l.order, func(pid id.ProductID) bool { return pid == o.ProductID })
	}
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = make(map[id.ProductID]*Line)
	l.order = nil
}

func (l *Ledger) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

func (l *Ledger) SetOpen(open bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = open
}
