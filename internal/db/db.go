package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with mineops-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full operational database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS mining_incidents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    incident_date DATE NOT NULL,
    mine_name TEXT NOT NULL,
    incident_type TEXT NOT NULL,
    severity TEXT NOT NULL CHECK(severity IN ('Critical','High','Medium','Low')),
    description TEXT NOT NULL DEFAULT '',
    casualties INTEGER NOT NULL DEFAULT 0,
    injuries INTEGER NOT NULL DEFAULT 0,
    cost_impact REAL NOT NULL DEFAULT 0,
    response_time_minutes INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_incidents_date ON mining_incidents(incident_date);
CREATE INDEX IF NOT EXISTS idx_incidents_severity ON mining_incidents(severity);

CREATE TABLE IF NOT EXISTS equipment_monitoring (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    equipment_id TEXT NOT NULL UNIQUE,
    equipment_type TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('Operational','Maintenance','Critical','Offline')),
    efficiency_score REAL NOT NULL DEFAULT 0,
    alerts TEXT NOT NULL DEFAULT '',
    temperature_celsius REAL,
    vibration_level REAL,
    last_maintenance DATE,
    next_maintenance DATE,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_equipment_status ON equipment_monitoring(status);

CREATE TABLE IF NOT EXISTS production_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    metric_date DATE NOT NULL,
    site_name TEXT NOT NULL,
    material_type TEXT NOT NULL,
    quantity_tons REAL NOT NULL DEFAULT 0,
    target_tons REAL NOT NULL DEFAULT 0,
    efficiency_percentage REAL NOT NULL DEFAULT 0,
    downtime_hours REAL NOT NULL DEFAULT 0,
    cost_per_ton REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_production_date ON production_metrics(metric_date);
CREATE INDEX IF NOT EXISTS idx_production_site ON production_metrics(site_name);

CREATE TABLE IF NOT EXISTS fuel_energy (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    equipment_id TEXT NOT NULL,
    reading_date DATE NOT NULL,
    fuel_liters REAL NOT NULL DEFAULT 0,
    energy_kwh REAL NOT NULL DEFAULT 0,
    shift TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_fuel_date ON fuel_energy(reading_date);

CREATE TABLE IF NOT EXISTS quality_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    site_name TEXT NOT NULL,
    metric_date DATE NOT NULL,
    material_type TEXT NOT NULL,
    quality_grade TEXT NOT NULL DEFAULT '',
    defects_found INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_quality_date ON quality_metrics(metric_date);

CREATE TABLE IF NOT EXISTS safety_compliance (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    audit_date DATE NOT NULL,
    site_name TEXT NOT NULL,
    compliance_score REAL NOT NULL DEFAULT 0,
    violations INTEGER NOT NULL DEFAULT 0,
    auditor_name TEXT NOT NULL DEFAULT '',
    recommendations TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_compliance_date ON safety_compliance(audit_date);

CREATE TABLE IF NOT EXISTS maintenance_repairs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    equipment_id TEXT NOT NULL,
    maintenance_type TEXT NOT NULL,
    start_date DATE NOT NULL,
    end_date DATE,
    cost REAL NOT NULL DEFAULT 0,
    downtime_hours REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_maintenance_start ON maintenance_repairs(start_date);

CREATE TABLE IF NOT EXISTS query_log (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    intent TEXT NOT NULL DEFAULT '',
    response_type TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT 'en',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_query_log_created ON query_log(created_at);
`
