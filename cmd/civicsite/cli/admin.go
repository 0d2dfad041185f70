package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/service"
	"github.com/civicsite/civicsite/internal/store"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin users",
		Long:  "Create and list administrative users who can log in to the admin area.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin user or reset an existing password",
		Example: `  civicsite admin create --email admin@example.com --password secret
  civicsite admin create --email admin@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminCreate(email, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return errors.New("passwords do not match")
		}
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	st, err := openStore(loadConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	created, err := upsertAdmin(cmdContext(), st, email, hash)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created admin user %q\n", store.NormalizeEmail(email))
	} else {
		fmt.Printf("Password reset for admin %q\n", store.NormalizeEmail(email))
	}

	return nil
}

// upsertAdmin creates the admin account, or resets the password when the
// email already exists. Reports whether a new account was created.
func upsertAdmin(ctx context.Context, st *store.Store, email, hash string) (bool, error) {
	existing, err := st.GetAdminByEmail(ctx, email)
	switch {
	case err == nil:
		if err := st.SetAdminPassword(ctx, existing.Email, hash); err != nil {
			return false, fmt.Errorf("reset password: %w", err)
		}
		return false, nil
	case errors.Is(err, store.ErrNotFound):
		admin := &model.Admin{Email: email, PasswordHash: hash}
		if err := st.CreateAdmin(ctx, admin); err != nil {
			return false, fmt.Errorf("create admin: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("lookup admin: %w", err)
	}
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all admin users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(jsonOutput bool) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	admins, err := st.ListAdmins(cmdContext())
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Println("No admin users configured. Use 'civicsite admin create' to create one.")
		return nil
	}

	fmt.Printf("%-6s %-32s %-24s\n", "ID", "EMAIL", "LAST LOGIN")
	fmt.Printf("%-6s %-32s %-24s\n", "--", "-----", "----------")
	for _, a := range admins {
		lastLogin := "never"
		if a.LastLoginAt != nil {
			lastLogin = a.LastLoginAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-6d %-32s %-24s\n", a.ID, a.Email, lastLogin)
	}

	return nil
}
