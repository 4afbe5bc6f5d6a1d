package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/supermall/internal/bootstrap"
	"github.com/example/supermall/internal/config"
	"github.com/example/supermall/internal/logging"
	"github.com/example/supermall/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose  bool
	envFile  string
	seedFile string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "supermall",
	Short: "SuperMall catalog tools",
	Long: `supermall runs the catalog API and offers terminal access to the same
listing and compare flows the web client uses.

Configuration is read from the environment, after an optional .env file.
With the memory store, --seed loads a YAML catalog before the command runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file read before the environment")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "YAML catalog applied to the store before running")

	rootCmd.AddCommand(serveCmd, seedCmd, browseCmd, compareCmd, tokenCmd)
}

// openResources opens the configured store and applies --seed when given.
func openResources(ctx context.Context) (*bootstrap.Resources, error) {
	res, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if seedFile == "" {
		return res, nil
	}

	f, err := seed.LoadFile(seedFile)
	if err == nil {
		_, err = seed.Apply(ctx, res.Store, f, logger)
	}
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("seed %s: %w", seedFile, err)
	}
	return res, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
