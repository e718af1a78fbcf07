package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.Service.HTTPPort)
	}
	if cfg.Service.StorageBackend != "postgres" {
		t.Errorf("StorageBackend = %q, want postgres", cfg.Service.StorageBackend)
	}
	if cfg.Service.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Service.ReadTimeout)
	}
	if cfg.Kafka.Topic != "report.events" {
		t.Errorf("Kafka.Topic = %q", cfg.Kafka.Topic)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("Kafka.Brokers = %v, want empty", cfg.Kafka.Brokers)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("READ_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q", cfg.Service.HTTPPort)
	}
	if cfg.Service.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %q", cfg.Service.StorageBackend)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Service.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Service.ReadTimeout)
	}
}

func TestValidate(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "etcd")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown storage backend")
		}
	})

	t.Run("memory backend needs no database", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "memory")
		t.Setenv("DB_HOST", "")
		if _, err := Load(); err != nil {
			t.Fatalf("Load: %v", err)
		}
	})
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.internal", Port: "5432", User: "svc",
		Password: "secret", Database: "crimenet", SSLMode: "require",
	}
	want := "host=db.internal port=5432 user=svc password=secret dbname=crimenet sslmode=require"
	if got := db.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
