package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civicsite/civicsite/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage civicsite configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default civicsite.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")

	return cmd
}

func runConfigInit(force bool) error {
	path := "civicsite.yaml"

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Set auth.jwt_secret (or CIVICSITE_AUTH_JWT_SECRET), then run 'civicsite serve'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigShow() error {
	initConfig()

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("Config file: %s\n", configFile)
	} else {
		fmt.Println("Config file: (none found, using defaults)")
	}
	fmt.Println()

	cfg := loadConfig()
	fmt.Printf("  server.host:             %s\n", cfg.Server.Host)
	fmt.Printf("  server.port:             %d\n", cfg.Server.Port)
	fmt.Printf("  server.public_url:       %s\n", cfg.Server.PublicURL)
	fmt.Printf("  server.requests_per_min: %d\n", cfg.Server.RequestsPerMin)
	fmt.Printf("  server.cors.origins:     %v\n", cfg.Server.CORS.Origins)
	fmt.Printf("  database.dsn:            %s\n", cfg.Database.DSN)
	secret := "(not set)"
	if cfg.Auth.JWTSecret != "" {
		secret = "(set)"
	}
	fmt.Printf("  auth.jwt_secret:         %s\n", secret)
	fmt.Printf("  auth.secure_cookies:     %t\n", cfg.Auth.SecureCookies)
	fmt.Printf("  logging.level:           %s\n", cfg.Logging.Level)
	fmt.Printf("  logging.format:          %s\n", cfg.Logging.Format)

	return nil
}
