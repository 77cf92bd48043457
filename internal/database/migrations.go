package database

import (
	"context"
	"fmt"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/config"
)

// migration holds a single schema migration with its target version and
// the SQL for each supported driver.
type migration struct {
	version  int
	sqlite   string
	postgres string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sqlite: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS plants (
	id                      TEXT PRIMARY KEY,
	plant_number            INTEGER NOT NULL UNIQUE,
	name                    TEXT NOT NULL,
	personal_name           TEXT NOT NULL,
	common_name             TEXT NOT NULL DEFAULT '',
	scientific_name         TEXT,
	location                TEXT NOT NULL DEFAULT '',
	watering_frequency_days INTEGER NOT NULL DEFAULT 7,
	feeding_frequency_days  INTEGER NOT NULL DEFAULT 14,
	last_watered            DATETIME,
	last_fed                DATETIME,
	next_check              DATETIME,
	notes                   TEXT NOT NULL DEFAULT '',
	image_url               TEXT,
	status                  TEXT NOT NULL DEFAULT 'healthy',
	created_at              DATETIME NOT NULL,
	updated_at              DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS care_logs (
	id            TEXT PRIMARY KEY,
	plant_id      TEXT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
	kind          TEXT NOT NULL CHECK (kind IN ('watering', 'feeding', 'repotting', 'soil-top-up', 'pruning')),
	date          DATETIME NOT NULL,
	amount        TEXT,
	method        TEXT,
	fertilizer    TEXT,
	pot_size      TEXT,
	soil_type     TEXT,
	parts_removed TEXT,
	reason        TEXT,
	notes         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_care_logs_plant_kind ON care_logs(plant_id, kind, date);

CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS plants (
	id                      UUID PRIMARY KEY,
	plant_number            INTEGER NOT NULL UNIQUE,
	name                    TEXT NOT NULL,
	personal_name           TEXT NOT NULL,
	common_name             TEXT NOT NULL DEFAULT '',
	scientific_name         TEXT,
	location                TEXT NOT NULL DEFAULT '',
	watering_frequency_days INTEGER NOT NULL DEFAULT 7,
	feeding_frequency_days  INTEGER NOT NULL DEFAULT 14,
	last_watered            TIMESTAMPTZ,
	last_fed                TIMESTAMPTZ,
	next_check              TIMESTAMPTZ,
	notes                   TEXT NOT NULL DEFAULT '',
	image_url               TEXT,
	status                  TEXT NOT NULL DEFAULT 'healthy',
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS care_logs (
	id            UUID PRIMARY KEY,
	plant_id      UUID NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
	kind          TEXT NOT NULL CHECK (kind IN ('watering', 'feeding', 'repotting', 'soil-top-up', 'pruning')),
	date          TIMESTAMPTZ NOT NULL,
	amount        TEXT,
	method        TEXT,
	fertilizer    TEXT,
	pot_size      TEXT,
	soil_type     TEXT,
	parts_removed TEXT,
	reason        TEXT,
	notes         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_care_logs_plant_kind ON care_logs(plant_id, kind, date);

CREATE TABLE IF NOT EXISTS locations (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// SchemaVersion returns the highest applied migration, 0 for a fresh
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var exists bool
	var err error
	switch db.driver {
	case config.DriverPostgres:
		err = db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = 'schema_version')")
	default:
		err = db.GetContext(ctx, &exists,
			"SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'")
	}
	if err != nil {
		return 0, fmt.Errorf("checking schema_version table: %w", err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	if err := db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the current schema version,
// each in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		stmt := m.sqlite
		if db.driver == config.DriverPostgres {
			stmt = m.postgres
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
	}

	return nil
}
