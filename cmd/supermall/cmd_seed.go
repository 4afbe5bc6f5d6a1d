package main

import (
	"fmt"

	"github.com/example/supermall/internal/bootstrap"
	"github.com/example/supermall/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmdFile string

// seedCmd writes a YAML catalog into the configured store
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML catalog into the store",
	Long: `Writes the users, shops, products and offers of a seed file.

Shop product and offer counters are set from the file, so run the count
projector only for writes made after seeding.

Example:
  supermall seed --file catalog.yaml`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedCmdFile, "file", "f", "", "Seed file (required)")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := seed.LoadFile(seedCmdFile)
	if err != nil {
		return err
	}

	res, err := bootstrap.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	out, err := seed.Apply(cmd.Context(), res.Store, f, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d shops, %d products, %d offers\n",
		out.Users, out.Shops, out.Products, out.Offers)
	return nil
}
