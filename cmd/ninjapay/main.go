package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ninjapaylabs/ninjapay/internal/config"
	"github.com/ninjapaylabs/ninjapay/internal/funding"
	"github.com/ninjapaylabs/ninjapay/internal/identity"
	"github.com/ninjapaylabs/ninjapay/internal/migration"
	"github.com/ninjapaylabs/ninjapay/internal/observability"
	"github.com/ninjapaylabs/ninjapay/internal/payment"
	"github.com/ninjapaylabs/ninjapay/internal/plugins"
	"github.com/ninjapaylabs/ninjapay/internal/security/vault"
	"github.com/ninjapaylabs/ninjapay/internal/server"
	"github.com/ninjapaylabs/ninjapay/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ninjapay",
		Short: "NinjaPay plugin backend",
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	return app.Stop(context.Background())
}

func runServe() {
	fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		vault.Module,
		identity.Module,
		funding.Module,
		payment.Module,
		plugins.Module,
		server.Module,
	).Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("NINJAPAY_NODE_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NINJAPAY_NODE_ID: %w", err)
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
