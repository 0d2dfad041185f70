package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civicsite/civicsite/internal/server"
	"github.com/civicsite/civicsite/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the civicsite HTTP server",
		Long:  "Start the HTTP server that exposes the public site API and the admin area.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, insecure cookies)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(dev bool) error {
	cfg := loadConfig()

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format, dev)

	// A missing signing secret is a refusal to start, not a degraded mode.
	// Sessions signed with a guessable key would hand out admin access.
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not set: configure it in civicsite.yaml or CIVICSITE_AUTH_JWT_SECRET")
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	logger.Info("database ready", "dsn", cfg.Database.DSN)

	authSvc, err := service.NewAuthService(st, cfg.Auth.JWTSecret)
	if err != nil {
		st.Close()
		return err
	}

	hasAdmin, err := st.HasAnyAdmin(cmdContext())
	if err != nil {
		logger.Warn("admin check failed", "error", err)
	}
	if !hasAdmin {
		logger.Warn("no admin account found, run: civicsite admin create")
	}

	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 30 * time.Second
	}

	secureCookies := cfg.Auth.SecureCookies
	if dev {
		secureCookies = false
	}

	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     cfg.Server.CORS.Origins,
		PublicURL:       cfg.Server.PublicURL,
		RequestsPerMin:  cfg.Server.RequestsPerMin,
		SecureCookies:   secureCookies,
		Version:         versionString(),
	}

	srv := server.New(srvCfg, st, authSvc, logger)

	fmt.Printf("civicsite %s\n", versionString())
	fmt.Printf("  listening: http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  admin:     http://%s:%d/admin\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  openapi:   http://%s:%d/openapi.json\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()

	return srv.ListenAndServe()
}

func newLogger(level, format string, dev bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if dev {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
