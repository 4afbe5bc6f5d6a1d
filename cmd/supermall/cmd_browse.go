package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/listing"
	"github.com/example/supermall/internal/readmodel"
	"github.com/spf13/cobra"
)

var (
	browseCategory string
	browseSearch   string
	browseShopID   string
	browseAll      bool
)

// browseCmd pages through catalog listings the way the web client does
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through catalog listings",
	Long: `Shows the first page of a listing and asks before loading each
further page. Answer y to load more; anything else stops.`,
}

var browseShopsCmd = &cobra.Command{
	Use:   "shops",
	Short: "Browse active shops by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return browse(cmd, func(c *catalog.Service) *listing.Listing[readmodel.Shop] {
			src := c.ShopSource(catalog.ShopFilter{Category: browseCategory, Search: browseSearch})
			return listing.New(src, readmodel.ShopKey, logger)
		}, printShops)
	},
}

var browseProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse one shop's products, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return browse(cmd, func(c *catalog.Service) *listing.Listing[readmodel.Product] {
			src := c.MerchantProductSource(catalog.MerchantScope{ShopID: browseShopID}, browseSearch)
			return listing.New(src, readmodel.ProductKey, logger)
		}, printProducts)
	},
}

func init() {
	browseShopsCmd.Flags().StringVar(&browseCategory, "category", "", "Category chip")
	browseShopsCmd.Flags().StringVar(&browseSearch, "search", "", "Search term")
	browseProductsCmd.Flags().StringVar(&browseShopID, "shop", "", "Shop id (required)")
	_ = browseProductsCmd.MarkFlagRequired("shop")
	browseCmd.PersistentFlags().BoolVar(&browseAll, "all", false, "Load every page without prompting")

	browseCmd.AddCommand(browseShopsCmd, browseProductsCmd)
}

func browse[T any](cmd *cobra.Command, build func(*catalog.Service) *listing.Listing[T], print func(io.Writer, []T)) error {
	ctx := cmd.Context()
	res, err := openResources(ctx)
	if err != nil {
		return err
	}
	defer res.Close()

	l := build(catalog.NewService(res.Store, logger, catalog.Options{ApplyShopCategory: cfg.ApplyShopCategory}))
	defer l.Close()
	if err := l.Load(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	shown := 0
	for {
		items := l.Items()
		print(out, items[shown:])
		shown = len(items)

		if !l.HasMore() {
			fmt.Fprintf(out, "%d shown, end of list\n", shown)
			return nil
		}
		if !browseAll {
			fmt.Fprintf(out, "%d shown. Load more? [y/N] ", shown)
			if !in.Scan() || !strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
				fmt.Fprintln(out)
				return nil
			}
		}
		if _, err := l.LoadMore(ctx); err != nil {
			return err
		}
	}
}

func printShops(w io.Writer, shops []readmodel.Shop) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range shops {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d products\t%d offers\n", s.ID, s.Name, s.Category, s.ProductCount, s.OfferCount)
	}
	_ = tw.Flush()
}

func printProducts(w io.Writer, products []readmodel.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d in stock\n", p.ID, p.Name, p.Price, p.Stock)
	}
	_ = tw.Flush()
}
