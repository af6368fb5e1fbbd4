// Command migrate applies the SQL migrations under migrations/ to the
// database named in the config file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/viper"

	"github.com/foxobr/ficha-rpg/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "config file with a database section")
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "limit to this many migrations (0 applies all)")
	showVersion := flag.Bool("version", false, "print the current schema version and exit")
	flag.Parse()

	if err := run(*configPath, *direction, *steps, *showVersion); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, direction string, steps int, showVersion bool) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	var dbCfg config.DatabaseConfig
	if err := v.Sub("database").Unmarshal(&dbCfg); err != nil {
		return fmt.Errorf("database section of %s: %w", configPath, err)
	}

	m, err := migrate.New("file://migrations", dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer m.Close()

	if showVersion {
		return printVersion(m)
	}

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("schema already current")
		return printVersion(m)
	}
	if err != nil {
		return fmt.Errorf("migrating %s: %w", direction, err)
	}
	return printVersion(m)
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("schema version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		fmt.Printf("schema version: %d (dirty)\n", version)
	} else {
		fmt.Printf("schema version: %d\n", version)
	}
	return nil
}
