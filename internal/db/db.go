package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	devenv "cricstats/dev/env"
	"cricstats/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Open opens the configured database, a remote libsql database when a url is
// set and a local sqlite file otherwise.
func Open(cfg config.Database) (*sqlx.DB, error) {
	if cfg.Url != "" {
		return openRemote(cfg)
	}
	return OpenFile(cfg.File)
}

func openRemote(cfg config.Database) (*sqlx.DB, error) {
	link, err := url.Parse(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.AuthToken != "" {
		query := link.Query()
		query.Set("authToken", cfg.AuthToken)
		link.RawQuery = query.Encode()
	}
	database, err := sql.Open("libsql", link.String())
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(database, "libsql"), nil
}

// OpenFile opens (creating if needed) a sqlite database file, `:memory:`
// opens an in-memory database.
func OpenFile(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a path was not specified")
	}

	dbpath := path
	if path != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(path)
		if err != nil {
			return nil, err
		}
		err = os.MkdirAll(filepath.Dir(dbpath), 0777)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer, funnelling everything through one
	// connection also keeps an in-memory database alive and shared.
	database.SetMaxOpenConns(1)

	if dbpath != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}

	return sqlx.NewDb(database, "sqlite"), nil
}
