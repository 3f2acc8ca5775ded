package pgdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	_ "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Open connects to postgres and checks the connection. With verbose set
// every query is printed by bundebug.
func Open(ctx context.Context, pgDsn string, verbose bool) (*bun.DB, error) {
	sqldb, err := sql.Open("pg", pgDsn)
	if err != nil {
		return nil, fmt.Errorf("open pg database: %w", err)
	}
	if err = sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping pg database: %w", err)
	}

	bdb := bun.NewDB(sqldb, pgdialect.New())
	if verbose {
		bdb.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return bdb, nil
}

// Running integration tests requires real pg db instance, but we
// don't have enought time to start db for every test so we will start db once
// and then pass datasource to as many tests as we want.

func OpenTest(ctx context.Context) (*bun.DB, error) {
	return Open(ctx, TestEnvDsn(), os.Getenv("DB_VERBOSE") == "true")
}

func TestEnvDsn() string {
	return os.Getenv("PGDB_DSN")
}

func SetTestEnvDsn(dsn string) {
	os.Setenv("PGDB_DSN", dsn)
}
