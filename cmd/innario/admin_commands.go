package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"innario/internal/api"
	"innario/internal/auth"
	"innario/internal/store"
)

func newAdminCommand(ctx *commandContext) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative utilities",
	}

	adminCmd.AddCommand(newCreateSuperadminCommand(ctx))

	return adminCmd
}

func newCreateSuperadminCommand(ctx *commandContext) *cobra.Command {
	var (
		username string
		email    string
		password string
		fullName string
	)

	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Bootstrap the first superadmin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			email = strings.TrimSpace(email)
			if username == "" {
				return errors.New("--username is required")
			}
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				return errors.New("--password is required")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			return ctx.withStore(func(st *store.Store) error {
				user, err := st.CreateUser(cmd.Context(), store.CreateUserParams{
					Username:       username,
					Email:          email,
					HashedPassword: hash,
					FullName:       strings.TrimSpace(fullName),
					Role:           auth.RoleSuperadmin,
				})
				if err != nil {
					if errors.Is(err, store.ErrConflict) {
						return fmt.Errorf("user %q already exists", username)
					}
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.FromUser(user))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created superadmin %s (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name for the account")
	cmd.Flags().StringVar(&email, "email", "", "Email address for the account")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name for the account")

	return cmd
}
