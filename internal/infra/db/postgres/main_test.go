//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
)

var testPool *pgxpool.Pool

const schema = `
CREATE TABLE IF NOT EXISTS tblclients (
  id        SERIAL PRIMARY KEY,
  firstname TEXT NOT NULL DEFAULT '',
  lastname  TEXT NOT NULL DEFAULT '',
  email     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tblinvoices (
  id       SERIAL PRIMARY KEY,
  userid   INT NOT NULL REFERENCES tblclients(id),
  total    NUMERIC(16,2) NOT NULL,
  status   TEXT NOT NULL DEFAULT 'Unpaid',
  datepaid TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS tblinvoiceitems (
  id          SERIAL PRIMARY KEY,
  invoiceid   INT NOT NULL REFERENCES tblinvoices(id),
  description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tblaccounts (
  id          SERIAL PRIMARY KEY,
  userid      INT NOT NULL,
  gateway     TEXT NOT NULL,
  date        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  description TEXT NOT NULL DEFAULT '',
  amountin    NUMERIC(16,2) NOT NULL DEFAULT 0,
  fees        NUMERIC(16,2) NOT NULL DEFAULT 0,
  transid     TEXT NOT NULL,
  invoiceid   INT NOT NULL,
  UNIQUE (gateway, transid)
);
`

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		log.Println("TEST_DATABASE_URL not set; skipping postgres integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("connect test database: %v", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}
	testPool = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func cleanup(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE tblaccounts, tblinvoiceitems, tblinvoices, tblclients RESTART IDENTITY CASCADE;`)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
