package cli

import (
	"context"
	"strings"

	"github.com/spf13/viper"

	"github.com/civicsite/civicsite/internal/config"
	"github.com/civicsite/civicsite/internal/store"
)

// envKeyReplacer maps nested config keys onto env var names, so
// auth.jwt_secret becomes CIVICSITE_AUTH_JWT_SECRET.
var envKeyReplacer = strings.NewReplacer(".", "_")

// loadConfig merges the defaults, the config file, and any CIVICSITE_
// environment overrides into one effective configuration.
func loadConfig() *config.Config {
	cfg := config.Default()

	setString := func(dst *string, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	setInt := func(dst *int, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	setString(&cfg.Server.Host, "server.host")
	setInt(&cfg.Server.Port, "server.port")
	setString(&cfg.Server.ShutdownTimeout, "server.shutdown_timeout")
	setString(&cfg.Server.PublicURL, "server.public_url")
	setInt(&cfg.Server.RequestsPerMin, "server.requests_per_min")
	if viper.IsSet("server.cors.origins") {
		cfg.Server.CORS.Origins = viper.GetStringSlice("server.cors.origins")
	}
	setString(&cfg.Database.DSN, "database.dsn")
	setString(&cfg.Auth.JWTSecret, "auth.jwt_secret")
	if viper.IsSet("auth.secure_cookies") {
		cfg.Auth.SecureCookies = viper.GetBool("auth.secure_cookies")
	}
	setString(&cfg.Logging.Level, "logging.level")
	setString(&cfg.Logging.Format, "logging.format")

	return cfg
}

// openStore connects to the configured database and runs migrations.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Database.DSN)
}

// cmdContext returns a background context for CLI operations.
func cmdContext() context.Context {
	return context.Background()
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
