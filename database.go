package ember

import (
	"database/sql"
	"fmt"
	"time"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver          string        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

// MySQLConfig returns optimized configuration for MySQL
func MySQLConfig(dsn string) DatabaseConfig {
	return DatabaseConfig{
		Driver:          "mysql",
		DSN:             dsn,
		MaxOpenConns:    50,
		MaxIdleConns:    20,
		ConnMaxLifetime: 60 * time.Minute,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// PostgreSQLConfig returns optimized configuration for PostgreSQL
func PostgreSQLConfig(dsn string) DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		DSN:             dsn,
		MaxOpenConns:    40,
		MaxIdleConns:    15,
		ConnMaxLifetime: 45 * time.Minute,
		ConnMaxIdleTime: 20 * time.Minute,
	}
}

// SQLiteConfig returns optimized configuration for SQLite. SQLite works best
// with a single connection.
func SQLiteConfig(dsn string) DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite3",
		DSN:             dsn,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 24 * time.Hour,
		ConnMaxIdleTime: 2 * time.Hour,
	}
}

// DB wraps a sql.DB with driver awareness for placeholder styles
type DB struct {
	*sql.DB
	driver string
}

// NewDB opens a database connection with default pooling
func NewDB(driver, dsn string) (*DB, error) {
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{DB: sqlDB, driver: driver}, nil
}

// NewDBWithConfig opens a database connection with the given pooling
// configuration
func NewDBWithConfig(config DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	return &DB{DB: sqlDB, driver: config.Driver}, nil
}

// Driver returns the driver name the connection was opened with
func (db *DB) Driver() string {
	return db.driver
}

// Placeholder returns the driver-specific placeholder for the i-th (1-based)
// query parameter
func (db *DB) Placeholder(i int) string {
	if db.driver == "postgres" {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// DatabaseProperties is the config binding for the database section of the
// application property source.
type DatabaseProperties struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// ConfigKey returns the property-source key the binding is decoded from
func (p *DatabaseProperties) ConfigKey() string {
	return "database"
}

// DatabaseProducers is a built-in producer set exposing the database
// connection for injection under the name "database.db". It resolves the
// DatabaseProperties binding through the container, so the connection
// settings come from the property source.
type DatabaseProducers struct{}

// SetName returns the producer set name
func (p *DatabaseProducers) SetName() string {
	return "database"
}

// Producers returns the named factory group
func (p *DatabaseProducers) Producers() map[string]interface{} {
	return map[string]interface{}{
		"db": func(props *DatabaseProperties) (*DB, error) {
			switch props.Driver {
			case "mysql":
				return NewDBWithConfig(MySQLConfig(props.DSN))
			case "postgres":
				return NewDBWithConfig(PostgreSQLConfig(props.DSN))
			case "sqlite3":
				return NewDBWithConfig(SQLiteConfig(props.DSN))
			default:
				return nil, fmt.Errorf("unsupported database driver: %s", props.Driver)
			}
		},
	}
}
