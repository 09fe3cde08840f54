package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var testSchemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore returns a store bound to a fresh schema with the init
// migration applied. The schema is dropped when the test ends. Tests are
// skipped when TEST_POSTGRES_DSN is unset.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	dsn := cfg.TestPostgresDSN
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	if err := execOnBase(dsn, "CREATE SCHEMA %s", schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	st, err := store.New(withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
		_ = execOnBase(dsn, "DROP SCHEMA %s CASCADE", schema)
	})
	if err := applySchema(st); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return st
}

// SeedUser registers a user with an account holding balance ("" for zero).
func SeedUser(t *testing.T, st *store.Store, phone, balance string) store.User {
	t.Helper()
	ctx := context.Background()
	u, _, err := st.InsertUserIfAbsent(ctx, phone, "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := st.EnsureAccount(ctx, u.ID); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if balance != "" {
		if err := st.UpdateAccountBalance(ctx, u.ID, decimal.RequireFromString(balance)); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
	return u
}

// Balance reads the account balance or fails the test.
func Balance(t *testing.T, st *store.Store, userID string) decimal.Decimal {
	t.Helper()
	acc, err := st.GetAccount(context.Background(), userID)
	if err != nil {
		t.Fatalf("get account %s: %v", userID, err)
	}
	return acc.Balance
}

// RequireBalance fails the test unless the account holds want.
func RequireBalance(t *testing.T, st *store.Store, userID, want string) {
	t.Helper()
	got := Balance(t, st, userID)
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("balance = %s, want %s", got.StringFixed(2), want)
	}
}

func execOnBase(dsn, format, schema string) error {
	stmt, err := schemaDDL(format, schema)
	if err != nil {
		return err
	}
	base, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return err
	}
	defer base.Close()
	_, err = base.Exec(context.Background(), stmt)
	return err
}

func applySchema(st *store.Store) error {
	path, err := findInitMigrationPath()
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = st.Pool.Exec(context.Background(), string(b))
	return err
}

func findInitMigrationPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		p := filepath.Join(dir, "migrations", "000001_init.up.sql")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("000001_init.up.sql not found from %s", dir)
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}

func schemaDDL(format, schema string) (string, error) {
	if !testSchemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("schema %q does not match required pattern", schema)
	}
	return fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()), nil
}
