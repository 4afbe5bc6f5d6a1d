package main

import (
	"fmt"
	"strings"

	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/compare"
	"github.com/spf13/cobra"
)

var (
	compareCategory string
	compareSelect   []string
)

// compareCmd renders a feature comparison of up to three products
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare products of one category side by side",
	Long: `Lists the candidate products of a category, or of the first discovered
category when --category is omitted. With --select, toggles the named
products (by id or exact name) into the selection and prints the matrix.

Example:
  supermall compare --category Textiles --select "Red Shawl" --select "Kasavu Saree"`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareCategory, "category", "", "Category to compare within")
	compareCmd.Flags().StringArrayVar(&compareSelect, "select", nil, "Product id or name to select (repeatable, at most 3)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	res, err := openResources(ctx)
	if err != nil {
		return err
	}
	defer res.Close()

	session := compare.NewSession(catalog.NewService(res.Store, logger, catalog.Options{ApplyShopCategory: cfg.ApplyShopCategory}), logger)
	defer session.Close()
	if err := session.Open(ctx); err != nil {
		return err
	}
	if compareCategory != "" && compareCategory != session.ActiveCategory() {
		if err := session.SelectCategory(ctx, compareCategory); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if session.ActiveCategory() == "" {
		fmt.Fprintln(out, "no categories to compare")
		return nil
	}
	fmt.Fprintf(out, "categories: %s\n", strings.Join(session.Categories(), ", "))

	// every requested product must be loaded before it can be selected
	for session.HasMore() {
		if _, err := session.LoadMore(ctx); err != nil {
			return err
		}
	}

	if len(compareSelect) == 0 {
		fmt.Fprintf(out, "%s candidates:\n", session.ActiveCategory())
		printProducts(out, session.Products())
		return nil
	}

	for _, want := range compareSelect {
		id := resolveProduct(session, want)
		if id == "" {
			return fmt.Errorf("no %s product matches %q", session.ActiveCategory(), want)
		}
		if !session.ToggleID(id) {
			fmt.Fprintf(out, "skipped %q: selection holds at most %d products\n", want, compare.MaxSelection)
		}
	}
	return compare.RenderText(out, session.Matrix())
}

func resolveProduct(s *compare.Session, want string) string {
	for _, p := range s.Products() {
		if p.ID == want || p.Name == want {
			return p.ID
		}
	}
	return ""
}
