package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cricstats/internal/components/assert"
	"cricstats/internal/components/chrono"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/db"
	"cricstats/internal/innings"
	"cricstats/pkg/textutil"

	"github.com/jmoiron/sqlx"
)

const (
	report_store_write_player = "store.write-player"
	report_store_read_innings = "store.read-innings"
)

// ErrNoTable is returned when reading a player table that does not exist.
var ErrNoTable = errors.New("no such player table")

// The registry maps site ids to the tables holding their innings, its
// leading underscore keeps it out of Players.
const registrySchema = `CREATE TABLE IF NOT EXISTS "_players" (
	site_id INTEGER PRIMARY KEY,
	table_name TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	innings INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store keeps one table per player, named after the player, with the
// columns of that player's innings table.
type Store struct {
	db   *sqlx.DB
	time chrono.API
	tel  telemetry.API
}

// New creates the player registry if it does not exist yet.
func New(ctx context.Context, database *sqlx.DB, clock chrono.API, tel telemetry.API) (*Store, error) {
	assert.NotNil(database)
	assert.NotNil(clock)
	assert.NotNil(tel)

	_, err := database.ExecContext(ctx, registrySchema)
	if err != nil {
		return nil, fmt.Errorf("create player registry: %w", err)
	}
	return &Store{
		db:   database,
		time: clock,
		tel:  telemetry.NewScopedAPI("store", tel),
	}, nil
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// PlayerTable is everything persisted for one player.
type PlayerTable struct {
	SiteID      int64
	DisplayName string
	// Table is the resolved table name, see ResolveTable.
	Table   string
	Schema  innings.Schema
	Records []innings.Record
}

func createTableSQL(table string, columns []innings.Column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", quote(col.Name), col.Type.SQL())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table), strings.Join(defs, ", "))
}

func insertSQL(table string, columns []innings.Column) string {
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quote(col.Name)
		params[i] = "?"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quote(table),
		strings.Join(names, ", "),
		strings.Join(params, ", "),
	)
}

// WritePlayer replaces the player's table with the given records and
// updates the registry, all in one transaction. A table the same player
// was previously stored under is dropped as well.
func (s *Store) WritePlayer(ctx context.Context, p PlayerTable) error {
	if p.Table == "" || strings.HasPrefix(p.Table, "_") {
		return fmt.Errorf("invalid table name %q", p.Table)
	}
	columns := p.Schema.Columns()

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var previous string
		err := tx.GetContext(
			ctx, &previous,
			`SELECT table_name FROM "_players" WHERE site_id = ?`,
			p.SiteID,
		)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if previous != "" && previous != p.Table {
			_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(previous))
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(p.Table))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, createTableSQL(p.Table, columns))
		if err != nil {
			return err
		}

		stmt, err := tx.PreparexContext(ctx, insertSQL(p.Table, columns))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, record := range p.Records {
			_, err = stmt.ExecContext(ctx, record.Row(columns)...)
			if err != nil {
				return fmt.Errorf("insert row %d: %w", record.Index, err)
			}
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO "_players" (site_id, table_name, display_name, innings, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (site_id) DO UPDATE SET
				table_name = excluded.table_name,
				display_name = COALESCE(NULLIF(excluded.display_name, ''), display_name),
				innings = excluded.innings,
				updated_at = excluded.updated_at`,
			p.SiteID, p.Table, p.DisplayName, len(p.Records), s.time.Now().Unix(),
		)
		return err
	})
	if err != nil {
		s.tel.ReportBroken(report_store_write_player, p.Table, err)
		return fmt.Errorf("write player %s: %w", p.Table, err)
	}
	return nil
}

// ResolveTable derives the table name of a player from their display name.
// An empty name keeps the table the player is registered under, or gives
// `player_<id>` for an unregistered player. A name already registered to
// another player gets the id appended.
func (s *Store) ResolveTable(ctx context.Context, siteID int64, name string) (string, error) {
	table := textutil.TableName(name)
	if table == "" {
		var registered string
		err := s.db.GetContext(
			ctx, &registered,
			`SELECT table_name FROM "_players" WHERE site_id = ?`,
			siteID,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Sprintf("player_%d", siteID), nil
		}
		if err != nil {
			return "", err
		}
		return registered, nil
	}
	if strings.HasPrefix(table, "_") || strings.HasPrefix(table, "sqlite_") {
		table = "player_" + strings.TrimPrefix(table, "_")
	}

	var owner int64
	err := s.db.GetContext(
		ctx, &owner,
		`SELECT site_id FROM "_players" WHERE table_name = ?`,
		table,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return table, nil
	}
	if err != nil {
		return "", err
	}
	if owner == siteID {
		return table, nil
	}
	return fmt.Sprintf("%s_%d", table, siteID), nil
}

// Players lists every player table, sorted by name.
func (s *Store) Players(ctx context.Context) ([]string, error) {
	var tables []string
	err := s.db.SelectContext(
		ctx, &tables,
		`SELECT name FROM sqlite_master
		WHERE type = 'table'
			AND name NOT LIKE '\_%' ESCAPE '\'
			AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list player tables: %w", err)
	}
	return tables, nil
}

func (s *Store) hasTable(ctx context.Context, table string) (bool, error) {
	var count int
	err := s.db.GetContext(
		ctx, &count,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		table,
	)
	return count > 0, err
}

func valueOf(raw any) (innings.Value, bool) {
	switch v := raw.(type) {
	case float64:
		return innings.FloatValue(v), true
	case int64:
		return innings.IntValue(v), true
	case string:
		return innings.TextValue(v), true
	case []byte:
		return innings.TextValue(string(v)), true
	default:
		return innings.Value{}, false
	}
}

// Innings reads every innings of a player in the order they were written.
// Columns the player's table lacks read as innings.Missing.
func (s *Store) Innings(ctx context.Context, table string) ([]innings.Innings, error) {
	ok, err := s.hasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok || strings.HasPrefix(table, "_") {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, table)
	}

	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", quote(table)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	var out []innings.Innings
	for rows.Next() {
		fields := map[string]any{}
		err = rows.MapScan(fields)
		if err != nil {
			s.tel.ReportBroken(report_store_read_innings, table, err)
			return nil, err
		}

		in := innings.NewInnings()
		for column, raw := range fields {
			v, ok := valueOf(raw)
			if !ok {
				continue
			}
			in.Set(column, v)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Player is a row of the player registry.
type Player struct {
	SiteID      int64  `db:"site_id"`
	Table       string `db:"table_name"`
	DisplayName string `db:"display_name"`
	Innings     int    `db:"innings"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (p Player) Updated() time.Time {
	return time.Unix(p.UpdatedAt, 0)
}

// Registry lists every registered player, sorted by table name.
func (s *Store) Registry(ctx context.Context) ([]Player, error) {
	var players []Player
	err := s.db.SelectContext(
		ctx, &players,
		`SELECT site_id, table_name, display_name, innings, updated_at
		FROM "_players" ORDER BY table_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("read player registry: %w", err)
	}
	return players, nil
}
