package store

import (
	"fmt"
	"strings"
)

// migrate creates the schema. Statements are idempotent: duplicate-object
// errors from re-running CREATE INDEX on engines without IF NOT EXISTS
// support are treated as no-ops.
func (s *Store) migrate() error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "DATETIME"
	switch s.driver {
	case "pgx":
		pk = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
	case "mysql":
		pk = "BIGINT PRIMARY KEY AUTO_INCREMENT"
		ts = "DATETIME"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS admins (
			id %s,
			email VARCHAR(320) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			last_login_at %[2]s,
			created_at %[2]s NOT NULL,
			updated_at %[2]s NOT NULL
		)`, pk, ts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS members (
			id %s,
			name VARCHAR(100) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			area VARCHAR(100) NOT NULL,
			joined_at %[2]s NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			created_at %[2]s NOT NULL,
			updated_at %[2]s NOT NULL
		)`, pk, ts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS events (
			id %s,
			title VARCHAR(150) NOT NULL,
			description TEXT NOT NULL,
			event_date %[2]s NOT NULL,
			image_url VARCHAR(2048) NOT NULL,
			created_at %[2]s NOT NULL,
			updated_at %[2]s NOT NULL
		)`, pk, ts),

		// Singleton tables: a fixed primary key of 1 makes "create exactly
		// once" an insert-if-absent against the same row.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS site_settings (
			id BIGINT PRIMARY KEY,
			hero_title VARCHAR(200) NOT NULL,
			hero_image VARCHAR(2048) NOT NULL DEFAULT '',
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS page_content (
			id BIGINT PRIMARY KEY,
			hero_title VARCHAR(200) NOT NULL,
			hero_subtitle VARCHAR(300) NOT NULL,
			hero_cta_text VARCHAR(100) NOT NULL,
			hero_background_image VARCHAR(2048) NOT NULL DEFAULT '',
			about_bio TEXT NOT NULL,
			about_leader_image VARCHAR(2048) NOT NULL DEFAULT '',
			initiatives TEXT NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts),

		`CREATE INDEX idx_members_public_joined ON members (is_public, joined_at)`,
		`CREATE INDEX idx_events_date ON events (event_date)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			lower := strings.ToLower(err.Error())
			if strings.Contains(lower, "already exists") || strings.Contains(lower, "duplicate") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
