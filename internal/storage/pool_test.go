//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/annedfinds/storefront-notify/internal/storage"
)

func TestNewDB_Ping(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sharedDB.Ping(ctx); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}
}

func TestNewDB_Unreachable(t *testing.T) {
	_, err := storage.NewDB(context.Background(), "postgres://x:x@localhost:1/x?sslmode=disable", 1, 2, 2*time.Second)
	if err == nil {
		t.Fatal("expected error for unreachable database")
	}
}

func TestNewDB_CloseIsolated(t *testing.T) {
	ctx := context.Background()
	db, err := storage.NewDB(ctx, sharedDSN, 1, 2, 10*time.Second)
	if err != nil {
		t.Fatalf("open second pool: %v", err)
	}
	db.Close()

	if err := db.Ping(ctx); err == nil {
		t.Error("expected ping on closed pool to fail")
	}
	if err := sharedDB.Ping(ctx); err != nil {
		t.Fatalf("shared pool should be unaffected, got %v", err)
	}
}
