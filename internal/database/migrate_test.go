package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
)

func TestSplitStatements(t *testing.T) {
	body := `-- header
CREATE TABLE a (
    id INT
);

-- comment between
INSERT INTO a (id) VALUES (1);
SELECT 1`
	got := splitStatements(body)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[0], "CREATE TABLE a") || strings.HasSuffix(got[0], ";") {
		t.Fatalf("unexpected first statement %q", got[0])
	}
	if got[2] != "SELECT 1" {
		t.Fatalf("unexpected trailing statement %q", got[2])
	}
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "hotel.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, config.DriverSQLite); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 applied migration, got %d", n)
	}
	var username string
	if err := db.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = '00000000-0000-0000-0000-000000000000'`).Scan(&username); err != nil {
		t.Fatalf("system user: %v", err)
	}
	if username != "sistema" {
		t.Fatalf("unexpected system username %q", username)
	}
}

func TestSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := Migrate(context.Background(), db, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = db.Exec(`INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ('h', 'missing-user', '2030-01-01 00:00:00', '2024-01-01 00:00:00')`)
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
}

func TestMigrateUnknownDriver(t *testing.T) {
	if _, err := migrationDir("postgres"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN("hotel", "p@ss:word", "db", "3306", "reservas")
	for _, want := range []string{"hotel:p@ss:word@tcp(db:3306)/reservas", "parseTime=true", "charset=utf8mb4", "clientFoundRows=true"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
	if strings.Contains(dsn, "loc=") {
		t.Errorf("UTC is the driver default and should not be spelled out: %q", dsn)
	}
}
