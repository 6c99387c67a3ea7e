package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/database"
)

var adminEmail, adminPassword string

// storefront admin:create
var adminCreateCmd = &cobra.Command{
	Use:   "admin:create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, db, err := app.OpenStore(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close(ctx)
			if db != nil {
				_ = database.Close(db)
			}
		}()

		user, err := services.NewAuthService(repositories.NewAdminUserRepository(store)).
			CreateAdmin(ctx, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Admin %s created (id %s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password, at least 8 characters")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
}
