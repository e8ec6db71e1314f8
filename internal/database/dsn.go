package database

import (
	"fmt"
	"net/url"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // Postgres driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/dbsmedya/gonest/internal/config"
)

// DriverName maps a configured driver to its database/sql registration name.
func DriverName(driver string) (string, error) {
	switch driver {
	case "mysql", "":
		return "mysql", nil
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// BuildDSN constructs a connection string for the configured driver.
func BuildDSN(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case "mysql", "":
		return buildMySQLDSN(cfg), nil
	case "postgres":
		return buildPostgresDSN(cfg), nil
	case "sqlite":
		return buildSQLiteDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func buildMySQLDSN(cfg *config.DatabaseConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		port,
		cfg.Database,
	)

	params := "?parseTime=true&charset=utf8mb4"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	// lib/pq has no opportunistic mode, so "preferred" connects in plain text
	sslMode := "disable"
	if cfg.TLS == "required" {
		sslMode = "require"
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, port),
		Path:   "/" + cfg.Database,
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func buildSQLiteDSN(cfg *config.DatabaseConfig) string {
	return "file:" + cfg.Path + "?_pragma=busy_timeout(5000)&mode=ro"
}
