package db

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies ("up") or rolls back one step ("down") of the embedded schema.
// DB must already be initialized.
func Migrate(direction string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "failed to open embedded migrations")
	}

	driver, err := pgx.WithInstance(DB.DB, &pgx.Config{})
	if err != nil {
		return errors.Wrap(err, "failed to create migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return errors.Wrap(err, "failed to create migrator")
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		return errors.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrapf(err, "failed to migrate %s", direction)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		log.Printf("✅ Migrate: schema at version %d (dirty=%v)", version, dirty)
	}
	return nil
}
