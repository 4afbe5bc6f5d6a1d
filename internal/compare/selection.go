package compare

import "github.com/example/supermall/internal/readmodel"

// MaxSelection is the number of products that can be compared at once.
const MaxSelection = 3

// Selection is an ordered set of at most MaxSelection products keyed by id.
type Selection struct {
	items []readmodel.Product
}

// Toggle removes p if selected, otherwise appends it while there is room.
// It reports whether the selection changed.
func (s *Selection) Toggle(p readmodel.Product) bool {
	for i, it := range s.items {
		if it.ID == p.ID {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	if len(s.items) >= MaxSelection {
		return false
	}
	s.items = append(s.items, p)
	return true
}

// Contains reports whether a product id is selected.
func (s *Selection) Contains(id string) bool {
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (s *Selection) Clear() { s.items = nil }

func (s *Selection) Len() int { return len(s.items) }

// Items returns the selected products in selection order.
func (s *Selection) Items() []readmodel.Product {
	out := make([]readmodel.Product, len(s.items))
	copy(out, s.items)
	return out
}

// SelectIDs toggles each product in order and returns the ids that were
// rejected because the selection was full.
func SelectIDs(products []readmodel.Product) (Selection, []string) {
	var sel Selection
	rejected := []string{}
	for _, p := range products {
		if !sel.Toggle(p) {
			rejected = append(rejected, p.ID)
		}
	}
	return sel, rejected
}
