package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/output"
)

var (
	usersFormat   string
	usersPage     int
	usersPageSize int

	createUserEmail    string
	createUserPassword string
	createUserRole     string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(usersFormat)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		users, total, err := db.ListUsers(cmd.Context(), usersPage, usersPageSize)
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			rendered, err := output.JSON(users)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}

		fmt.Println(output.UserTable(users))
		fmt.Printf("%d of %d users (page %d)\n", len(users), total, usersPage)
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Long: `Create a user account directly in the store.

Intended for bootstrapping the first super admin; regular users should
register through the API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(args[0])
		role := core.UserRole(createUserRole)
		if !role.Valid() {
			return fmt.Errorf("invalid role: %s", createUserRole)
		}
		if len(createUserPassword) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}

		hashed, err := auth.HashPassword(createUserPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		existing, err := db.GetUser(cmd.Context(), username)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("user %s already exists", username)
		}

		err = db.CreateUser(cmd.Context(), core.User{
			Username:       username,
			Email:          strings.TrimSpace(createUserEmail),
			HashedPassword: hashed,
			Role:           role,
			CreatedAt:      time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("created user %s with role %s\n", username, role)
		return nil
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <username> <role>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := core.UserRole(args[1])
		if !role.Valid() {
			return fmt.Errorf("invalid role: %s", args[1])
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		if err := db.UpdateUserRole(cmd.Context(), args[0], role); err != nil {
			return err
		}

		fmt.Printf("updated %s to role %s\n", args[0], role)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		if err := db.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("deleted user %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersSetRoleCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersListCmd.Flags().StringVarP(&usersFormat, "format", "f", "table", "output format (table, json)")
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "page number")
	usersListCmd.Flags().IntVar(&usersPageSize, "page-size", 50, "page size")

	usersCreateCmd.Flags().StringVar(&createUserEmail, "email", "", "user email address")
	usersCreateCmd.Flags().StringVar(&createUserPassword, "password", "", "user password")
	usersCreateCmd.Flags().StringVar(&createUserRole, "role", string(core.RoleUser), "user role (super_admin, paper_admin, user)")
	_ = usersCreateCmd.MarkFlagRequired("password")
}
