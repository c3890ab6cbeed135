package database

import (
	"testing"
)

// TestOpen_ReturnsDBForAnyURL はsql.Openは接続を試行しないため、
// 不正なURLでもDBオブジェクトが返ることを検証する。
// 実際の接続確認にはPingが必要。
func TestOpen_ReturnsDBForAnyURL(t *testing.T) {
	db, err := Open(DriverPostgres, "postgres://invalid")
	if err != nil {
		t.Fatalf("Open returned unexpected error: %v", err)
	}
	if db == nil {
		t.Fatal("expected non-nil db")
	}
	defer db.Close()
}

// TestOpen_SQLiteInMemory_Pings はインメモリSQLiteに接続できることを検証する。
func TestOpen_SQLiteInMemory_Pings(t *testing.T) {
	db, err := Open(DriverSQLite, "file::memory:")
	if err != nil {
		t.Fatalf("Open returned unexpected error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

// TestOpen_UnsupportedDriver_ReturnsError は未対応ドライバでエラーになることを検証する。
func TestOpen_UnsupportedDriver_ReturnsError(t *testing.T) {
	db, err := Open("mysql", "user:pass@/db")
	if err == nil {
		db.Close()
		t.Fatal("expected error for unsupported driver")
	}
}
