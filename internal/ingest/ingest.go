package ingest

import (
	"context"
	"errors"
	"fmt"

	"cricstats/internal/components/assert"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/innings"
	"cricstats/internal/scrapers/cricinfo"
	"cricstats/internal/store"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_ingest_player = "ingest.player"
	report_ingest_all    = "ingest.all"
)

var (
	// ErrNoTable means the player's stats page has no batting-innings table,
	// usually because they never played the format.
	ErrNoTable = errors.New("no innings table")
	// ErrNoInnings means the table only holds innings without statistics.
	ErrNoInnings = errors.New("no innings with statistics")
)

// Source is where player pages come from.
type Source interface {
	InningsPage(ctx context.Context, id cricinfo.PlayerID) (*goquery.Document, error)
	PlayerName(ctx context.Context, id cricinfo.PlayerID) string
}

// Sink is where parsed players go.
type Sink interface {
	ResolveTable(ctx context.Context, siteID int64, name string) (string, error)
	WritePlayer(ctx context.Context, table store.PlayerTable) error
}

type Outcome int

const (
	OutcomeStored Outcome = iota
	OutcomeFetchFailed
	OutcomeNoTable
	OutcomeNoInnings
	OutcomeMalformed
	OutcomeWriteFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeFetchFailed:
		return "fetch failed"
	case OutcomeNoTable:
		return "no table"
	case OutcomeNoInnings:
		return "no innings"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeWriteFailed:
		return "write failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Skipped reports whether the outcome is an expected absence of data
// rather than a failure.
func (o Outcome) Skipped() bool {
	return o == OutcomeNoTable || o == OutcomeNoInnings
}

type Result struct {
	ID      cricinfo.PlayerID
	Name    string
	Table   string
	Innings int
	Outcome Outcome
	Err     error
}

type Ingestor struct {
	source  Source
	sink    Sink
	locator innings.Locator
	tel     telemetry.API
}

func NewIngestor(source Source, sink Sink, locator innings.Locator, tel telemetry.API) *Ingestor {
	assert.NotNil(source)
	assert.NotNil(sink)
	assert.NotNil(locator)
	assert.NotNil(tel)

	return &Ingestor{
		source:  source,
		sink:    sink,
		locator: locator,
		tel:     telemetry.NewScopedAPI("ingest", tel),
	}
}

// IngestPlayer fetches, parses and stores one player. Nothing is stored
// unless every row of the player's table parses.
func (i *Ingestor) IngestPlayer(ctx context.Context, id cricinfo.PlayerID) (Result, error) {
	result := Result{ID: id}
	fail := func(outcome Outcome, err error) (Result, error) {
		result.Outcome = outcome
		result.Err = err
		return result, err
	}

	doc, err := i.source.InningsPage(ctx, id)
	if err != nil {
		return fail(OutcomeFetchFailed, err)
	}

	table, schema := innings.ReadTable(doc, i.locator)
	if schema.Empty() {
		i.tel.ReportInfo(report_ingest_player, id, "no innings table")
		return fail(OutcomeNoTable, ErrNoTable)
	}
	i.tel.ReportDebug("schema", id, []string(schema))

	records, err := innings.Coerce(innings.ExtractRows(schema, table))
	if err != nil {
		i.tel.ReportBroken(report_ingest_player, id, err)
		return fail(OutcomeMalformed, fmt.Errorf("player %d: %w", id, err))
	}
	if len(records) == 0 {
		i.tel.ReportInfo(report_ingest_player, id, "did not bat")
		return fail(OutcomeNoInnings, ErrNoInnings)
	}

	name := i.source.PlayerName(ctx, id)
	result.Name = name
	if name == cricinfo.UnknownName {
		name = ""
	}
	tableName, err := i.sink.ResolveTable(ctx, int64(id), name)
	if err != nil {
		return fail(OutcomeWriteFailed, err)
	}
	result.Table = tableName

	err = i.sink.WritePlayer(ctx, store.PlayerTable{
		SiteID:      int64(id),
		DisplayName: result.Name,
		Table:       tableName,
		Schema:      schema,
		Records:     records,
	})
	if err != nil {
		return fail(OutcomeWriteFailed, err)
	}

	result.Innings = len(records)
	result.Outcome = OutcomeStored
	return result, nil
}

type Summary struct {
	Results []Result
	Stored  int
	Skipped int
	Failed  int
}

// IngestAll ingests players one after the other. A failing player never
// stops the batch, only a cancelled context does.
func (i *Ingestor) IngestAll(ctx context.Context, ids []cricinfo.PlayerID) Summary {
	var summary Summary
	for _, id := range ids {
		if ctx.Err() != nil {
			i.tel.ReportWarning(report_ingest_all, "cancelled", ctx.Err())
			break
		}

		result, err := i.IngestPlayer(ctx, id)
		summary.Results = append(summary.Results, result)
		switch {
		case err == nil:
			summary.Stored++
		case result.Outcome.Skipped():
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	i.tel.ReportCount(report_ingest_all+".stored", int64(summary.Stored))
	i.tel.ReportCount(report_ingest_all+".skipped", int64(summary.Skipped))
	i.tel.ReportCount(report_ingest_all+".failed", int64(summary.Failed))
	return summary
}
