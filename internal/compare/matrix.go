package compare

import (
	"encoding/json"
	"fmt"

	"github.com/example/supermall/internal/readmodel"
)

// CellKind is how a matrix cell renders
type CellKind int

const (
	CellNotApplicable CellKind = iota
	CellBool
	CellText
)

func (k CellKind) String() string {
	switch k {
	case CellBool:
		return "bool"
	case CellText:
		return "text"
	}
	return "n/a"
}

// Cell is one product's value in a row
type Cell struct {
	Kind CellKind
	Bool bool
	Text string
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind  string `json:"kind"`
		Value any    `json:"value,omitempty"`
	}{Kind: c.Kind.String()}
	switch c.Kind {
	case CellBool:
		out.Value = c.Bool
	case CellText:
		out.Value = c.Text
	}
	return json.Marshal(out)
}

// CellFor maps a feature value onto a cell. Absent is not applicable;
// a false boolean is still a boolean cell.
func CellFor(v readmodel.FeatureValue) Cell {
	switch v.Kind() {
	case readmodel.FeatureBool:
		b, _ := v.Bool()
		return Cell{Kind: CellBool, Bool: b}
	case readmodel.FeatureNumber, readmodel.FeatureText:
		return Cell{Kind: CellText, Text: v.Text()}
	}
	return Cell{Kind: CellNotApplicable}
}

// Row is one labelled line of the matrix; Cells follow column order.
type Row struct {
	Label string `json:"label"`
	Key   string `json:"key,omitempty"`
	Cells []Cell `json:"cells"`
}

// Column heads one compared product
type Column struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ShopName string  `json:"shopName"`
	ImageURL string  `json:"imageUrl"`
	Price    float64 `json:"price"`
}

// Matrix is the comparison table: fixed rows, then one row per feature key.
type Matrix struct {
	Columns  []Column `json:"columns"`
	Fixed    []Row    `json:"fixed"`
	Features []Row    `json:"features"`
}

// BuildMatrix is a pure function of the selected products. Feature keys are
// the union in first-discovery order: selection order, then each product's
// own key order.
func BuildMatrix(products []readmodel.Product) Matrix {
	m := Matrix{
		Columns:  make([]Column, len(products)),
		Fixed:    make([]Row, 0, 3),
		Features: []Row{},
	}

	price := Row{Label: "Price", Cells: make([]Cell, 0, len(products))}
	category := Row{Label: "Category", Cells: make([]Cell, 0, len(products))}
	description := Row{Label: "Description", Cells: make([]Cell, 0, len(products))}
	for i, p := range products {
		m.Columns[i] = Column{ID: p.ID, Name: p.Name, ShopName: p.ShopName, ImageURL: p.ImageURL, Price: p.Price}
		price.Cells = append(price.Cells, Cell{Kind: CellText, Text: fmt.Sprintf("$%.2f", p.Price)})
		category.Cells = append(category.Cells, textCell(p.Category))
		description.Cells = append(description.Cells, textCell(p.Description))
	}
	m.Fixed = append(m.Fixed, price, category, description)

	for _, key := range featureKeys(products) {
		row := Row{Label: key, Key: key, Cells: make([]Cell, len(products))}
		for i, p := range products {
			row.Cells[i] = CellFor(p.Features.Get(key))
		}
		m.Features = append(m.Features, row)
	}
	return m
}

func featureKeys(products []readmodel.Product) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, p := range products {
		for _, k := range p.Features.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func textCell(s string) Cell {
	if s == "" {
		return Cell{Kind: CellNotApplicable}
	}
	return Cell{Kind: CellText, Text: s}
}
