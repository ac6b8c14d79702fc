package db

import (
	"path/filepath"
	"testing"
)

func TestIsPostgresDSN(t *testing.T) {
	cases := []struct {
		dsn  string
		want bool
	}{
		{"postgres://u:p@localhost:5432/app", true},
		{"postgresql://u:p@localhost:5432/app", true},
		{"host=localhost user=app dbname=app", true},
		{"file:/tmp/app.db", false},
		{"app.db", false},
	}
	for _, tc := range cases {
		if got := isPostgresDSN(tc.dsn); got != tc.want {
			t.Fatalf("isPostgresDSN(%q) = %v, want %v", tc.dsn, got, tc.want)
		}
	}
}

func TestOpen_SQLiteAndDialectHelpers(t *testing.T) {
	conn, err := Open("file:" + filepath.Join(t.TempDir(), "dialect-test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %q", DialectName(conn))
	}
	if expr := CaseInsensitiveLikeExpr(conn, "email"); expr != "LOWER(email) LIKE ?" {
		t.Fatalf("unexpected like expr: %q", expr)
	}
	if pattern := NormalizeLikePattern(conn, "%ADA%"); pattern != "%ada%" {
		t.Fatalf("unexpected pattern: %q", pattern)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
