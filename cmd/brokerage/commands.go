package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"brokerage/internal/catalog"
	"brokerage/internal/domain"
	"brokerage/internal/repos"
	"brokerage/internal/services"
	"brokerage/internal/validate"
)

func seedCmd() *cobra.Command {
	var reset, demoUsers bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the database and load the demo catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			repo := repos.NewPropertyRepo(db)
			if reset {
				if err := repo.Save(cmd.Context(), catalog.SeedProperties()); err != nil {
					return fmt.Errorf("reset catalog: %w", err)
				}
			}
			if demoUsers {
				if err := repos.SeedDemoUsers(cmd.Context(), db); err != nil {
					return fmt.Errorf("seed demo users: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "demo accounts use password %q; do not enable on a public site\n", repos.DemoPassword)
			}
			props, err := repo.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog has %d listings\n", len(props))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "replace every listing with the demo catalog")
	cmd.Flags().BoolVar(&demoUsers, "demo-users", false, "also create the demo admin and agent accounts")
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Manage admin accounts"}

	var email, name, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator who can sign in to /admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newAdmin(email, name, password)
			if err != nil {
				return err
			}
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repos.NewUserRepo(db).Create(cmd.Context(), u); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "8-64 chars with upper, lower, digit and symbol")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

func newAdmin(email, name, password string) (domain.User, error) {
	email, ok := validate.Email(email)
	if !ok {
		return domain.User{}, errors.New("invalid email")
	}
	if !validate.Password(password) {
		return domain.User{}, errors.New("password does not meet the policy")
	}
	hash, err := services.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = email
	}
	return domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: hash, Role: domain.RoleAdmin}, nil
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every listing as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return exportListings(cmd.Context(), repos.NewPropertyRepo(db), cmd.OutOrStdout())
		},
	}
}

func exportListings(ctx context.Context, repo catalog.Repository, w io.Writer) error {
	props, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(props)
}
