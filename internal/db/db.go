package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	appconfig "github.com/sharpstore/pos-backend/internal/config"
	"github.com/sharpstore/pos-backend/internal/models"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the database drivers and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectAndMigrate opens the store selected by cfg and brings the schema up
// to date. With MIGRATIONS=1 the versioned SQL migrations in ./migrations run
// via golang-migrate; otherwise AutoMigrate is used as the dev-convenience
// fallback. The write path never probes the schema at runtime.
func ConnectAndMigrate(cfg appconfig.Config) (*gorm.DB, error) {
	log := appconfig.Logger()
	db, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if appconfig.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(cfg); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		modelsToMigrate := []interface{}{
			&models.Product{}, &models.Invoice{}, &models.InvoiceItem{},
			&models.Return{}, &models.ReturnItem{},
		}
		for _, m := range modelsToMigrate {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"products", "invoices", "invoice_items"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if appconfig.ParseBool("DB_SEED", false) {
		seed(db)
	}
	log.WithField("driver", cfg.DBDriver).Info("database ready")
	return db, nil
}

func connect(cfg appconfig.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	switch cfg.DBDriver {
	case "sqlite", "":
		path := cfg.DatabaseDSN
		if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		return gorm.Open(sqlite.Open(path), gcfg)
	case "postgres":
		dsn := NormalizeDSN(cfg.DatabaseDSN)
		var db *gorm.DB
		var err error
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				return db, nil
			}
			appconfig.Logger().WithError(err).Warn("retrying DB connection")
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// runSQLMigrations executes the files in ./migrations using the golang-migrate
// file source.
func runSQLMigrations(cfg appconfig.Config) error {
	var url string
	switch cfg.DBDriver {
	case "sqlite", "":
		url = "sqlite3://" + cfg.DatabaseDSN
	case "postgres":
		url = ToURLDSN(NormalizeDSN(cfg.DatabaseDSN))
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	m, err := migrate.New("file://migrations", url)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// seed inserts a small starter catalog so a fresh install has something to
// sell. Idempotent: existing names are left alone.
func seed(db *gorm.DB) {
	starter := []models.Product{
		{Name: "Bottled Water 500ml", UnitPrice: decimal.NewFromFloat(0.50), QuantityOnHand: 200},
		{Name: "Notebook A5", UnitPrice: decimal.NewFromFloat(2.25), QuantityOnHand: 80},
		{Name: "Ballpoint Pen", UnitPrice: decimal.NewFromFloat(0.75), QuantityOnHand: 150},
	}
	for _, p := range starter {
		var existing models.Product
		if err := db.Where("name = ?", p.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			db.Create(&p)
		}
	}
}
