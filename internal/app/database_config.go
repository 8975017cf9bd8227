package app

import (
	"strings"

	"github.com/charlesng35/coffeeshop/internal/database"
)

// DatabaseOptions converts DatabaseConfig into connection options for the selected driver.
func (c DatabaseConfig) DatabaseOptions() database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   c.Path,
		DSN:    c.DSN,
	}

	var host DBAuthConfig
	switch cfg.Driver {
	case "postgres", "postgresql":
		host = c.Postgres
	case "mysql":
		host = c.MySQL
	default:
		return cfg
	}

	cfg.Host = host.Host
	cfg.Port = host.Port
	cfg.Name = host.Database
	cfg.User = host.Username
	cfg.Password = host.Password
	cfg.Options = host.Options
	return cfg
}
