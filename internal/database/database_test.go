package database

import (
	"path/filepath"
	"testing"

	"vestora/internal/config"
	"vestora/internal/logger"
)

func init() {
	logger.Init("test")
}

func TestNewConfig(t *testing.T) {
	t.Run("postgres_dsn", func(t *testing.T) {
		cfg, err := NewConfig(&config.Config{
			DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "vestora", DBSSLMode: "disable",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "host=db port=5432 user=u password=p dbname=vestora sslmode=disable"
		if cfg.DSN() != want {
			t.Errorf("expected %q, got %q", want, cfg.DSN())
		}
		if cfg.MigrateURL() != "postgres://u:p@db:5432/vestora?sslmode=disable" {
			t.Errorf("unexpected migrate url %q", cfg.MigrateURL())
		}
	})

	t.Run("unsupported_driver", func(t *testing.T) {
		if _, err := NewConfig(&config.Config{DBDriver: "oracle"}); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})
}

func TestManager_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vestora.db")
	mgr, err := NewManager(&Config{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() { _ = mgr.Close() }()

	if err := mgr.RunMigrations(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	var count int64
	for _, table := range []string{"users", "profiles", "assets", "balances", "transactions", "audit_logs"} {
		if err := mgr.DB().Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}
