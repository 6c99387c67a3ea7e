// Command storefront runs the shop API and its maintenance tasks.
//
//	storefront serve             # HTTP + gRPC health
//	storefront migrate           # apply pending SQL migrations
//	storefront migrate:rollback
//	storefront migrate:status
//	storefront seed              # demo catalogue into an empty store
//	storefront route:list
//	storefront admin:create --email owner@shop.test --password …
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server and tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closeLogs, err := logger.Setup()
		if err != nil {
			logger.Warn("log sink unavailable", "error", err)
		}
		cobra.OnFinalize(closeLogs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(adminCreateCmd)
}
