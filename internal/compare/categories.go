// Package compare assembles the product comparison view.
package compare

import "github.com/example/supermall/internal/readmodel"

// DiscoverCategories returns the distinct non-empty categories in first-seen order.
func DiscoverCategories(products []readmodel.Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
