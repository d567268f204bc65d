package app

import (
	"context"
	"testing"
)

func TestNewDependencies_Memory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close()

	if deps.Books == nil || deps.Authors == nil || deps.Customers == nil ||
		deps.Carts == nil || deps.Orders == nil || deps.Outbox == nil || deps.IDs == nil {
		t.Fatal("all repositories must be initialized")
	}
	if deps.Logger == nil {
		t.Fatal("logger must be initialized")
	}
	if err := deps.PingStorage(context.Background()); err != nil {
		t.Fatalf("memory storage ping must always succeed: %v", err)
	}
}

func TestNewDependencies_UnsupportedDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "cassandra"

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}
