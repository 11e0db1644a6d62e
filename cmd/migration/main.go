package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"gitlab.com/dirk.krummacker/contacts-book/internal/config"
	"gitlab.com/dirk.krummacker/contacts-book/internal/database"
	"gitlab.com/dirk.krummacker/contacts-book/internal/logger"
)

// Usage example on the command line:
// > DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go
// > DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go -steps=-1
func main() {
	logger.SetupDefault(os.Stdout, slog.LevelInfo)

	down := flag.Bool("down", false, "revert all migrations")
	steps := flag.Int("steps", 0, "apply this many migrations, negative values revert")
	flag.Parse()

	cfg, err := config.LoadDatabase()
	if err != nil {
		fail(err)
	}

	if !*down && *steps == 0 {
		if err := database.RunMigrations(*cfg); err != nil {
			fail(err)
		}
		return
	}

	m, err := database.NewMigrator(*cfg)
	if err != nil {
		fail(err)
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Steps(*steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fail(err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		fail(err)
	}
	slog.Info("migration finished", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
}

func fail(err error) {
	slog.Error("migration failed", slog.String("error", err.Error()))
	os.Exit(1)
}
