package store

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/block-explorer/utils"
)

// testDB describes the Postgres server used by archive tests. Every field
// can be overridden with a POSTGRES_TEST_* environment variable.
type testDB struct {
	User     string
	Password string
	Host     string
	Port     string
	SSLMode  string
}

func testDBFromEnv() testDB {
	return testDB{
		User:     utils.Env("POSTGRES_TEST_USER", "postgres"),
		Password: utils.Env("POSTGRES_TEST_PASSWORD", "postgres"),
		Host:     utils.Env("POSTGRES_TEST_HOST", "localhost"),
		Port:     utils.Env("POSTGRES_TEST_PORT", "5432"),
		SSLMode:  utils.Env("POSTGRES_TEST_SSLMODE", "disable"),
	}
}

func (o testDB) dsn(dbname string) string {
	return fmt.Sprintf("host='%s' port='%s' user='%s' password='%s' dbname='%s' sslmode='%s'",
		o.Host, o.Port, o.User, o.Password, dbname, o.SSLMode)
}

// EnsureDB creates a fresh archive database with the rounds schema and
// returns a connection to it. The test is skipped when Postgres cannot be
// reached. The database is dropped by cleanup.
func EnsureDB(t *testing.T) (testdb *sql.DB, cleanup func()) {
	t.Helper()

	opts := testDBFromEnv()
	name := utils.Env("POSTGRES_TEST_DATABASE", fmt.Sprintf("explorer_test_%d", time.Now().UnixNano()))

	rootdb, err := sql.Open("postgres", opts.dsn("postgres"))
	if err != nil {
		t.Skipf("cannot connect to postgres: %s", err)
	}
	if err := rootdb.Ping(); err != nil {
		rootdb.Close()
		t.Skipf("cannot ping postgres: %s", err)
	}
	if _, err := rootdb.Exec("CREATE DATABASE " + name); err != nil {
		rootdb.Close()
		t.Fatalf("cannot create database %q: %s", name, err)
	}

	testdb, err = sql.Open("postgres", opts.dsn(name))
	if err == nil {
		err = testdb.Ping()
	}
	if err == nil {
		err = EnsureSchema(testdb)
	}
	cleanup = func() {
		if testdb != nil {
			testdb.Close()
		}
		if _, err := rootdb.Exec("DROP DATABASE IF EXISTS " + name); err != nil {
			t.Logf("cannot drop test database %q: %s", name, err)
		}
		rootdb.Close()
	}
	if err != nil {
		cleanup()
		t.Fatalf("cannot prepare test database %q: %s", name, err)
	}
	return testdb, cleanup
}
