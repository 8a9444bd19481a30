package main

import (
	"errors"
	"fmt"

	userstore "github.com/dalemusser/applytrack/internal/app/store/users"
	"github.com/dalemusser/applytrack/internal/app/system/authutil"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

func newUsersCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Create, disable and enable accounts",
	}
	cmd.AddCommand(
		newUsersCreateCmd(g),
		newUsersStatusCmd(g, "disable", models.UserStatusDisabled),
		newUsersStatusCmd(g, "enable", models.UserStatusActive),
	)
	return cmd
}

func newUsersCreateCmd(g *globalOpts) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := authutil.ValidatePassword(password); err != nil {
				return err
			}

			db, closeDB, err := g.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Short(), g.logger(), "users create")
			defer cancel()

			u, err := userstore.New(db).Create(ctx, models.User{FullName: name, Email: email}, password)
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return fmt.Errorf("%s: %w", email, err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email, u.ID.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	for _, f := range []string{"email", "name", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newUsersStatusCmd(g *globalOpts, verb, status string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   verb,
		Short: fmt.Sprintf("Set an account's status to %s", status),
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, closeDB, err := g.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Short(), g.logger(), "users "+verb)
			defer cancel()

			err = userstore.New(db).SetStatusByEmail(ctx, email, status)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("no user with email %q", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, status)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
