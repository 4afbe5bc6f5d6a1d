package main

import (
	"github.com/example/supermall/internal/bootstrap"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog API",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openResources(cmd.Context())
		if err != nil {
			return err
		}
		defer res.Close()
		return bootstrap.Serve(cmd.Context(), cfg, res, logger)
	},
}
