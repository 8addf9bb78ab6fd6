// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlimport runs one trade export through detection, translation,
// chronological sorting, and FIFO matching.
package tradectlimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlexec"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	"github.com/bufdev/tradectl/internal/tradectl/tradectltranslate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// tracerName is the instrumentation name of the import tracer.
const tracerName = "github.com/bufdev/tradectl/internal/tradectl/tradectlimport"

// ErrEmptyInput is returned when an export has no data rows.
var ErrEmptyInput = errors.New("export has no data rows")

// Result is the output of one import.
type Result struct {
	// Format is the detected export format.
	Format tradectltranslate.Format
	// Trades are the matched trades.
	Trades []tradectlmatch.MatchedTrade
	// Stats are the diagnostic counters of the import.
	Stats Stats
}

// Stats counts what happened to the rows of one import.
//
// None of these conditions fail an import.
type Stats struct {
	// RowsRead is the number of data rows in the export.
	RowsRead int
	// RowsDropped is the number of rows rejected by the translator.
	RowsDropped int
	// Executions is the number of executions produced by translation.
	Executions int
	// UnknownRole is the number of executions with neither an entry nor an exit role.
	UnknownRole int
	// UnmatchedExits is the number of exits with no pending entry.
	UnmatchedExits int
	// PendingEntries is the number of entries left open at the end of the export.
	PendingEntries int
	// MatchedTrades is the number of matched trades.
	MatchedTrades int
}

// Importer imports trade exports.
type Importer interface {
	// Import imports a parsed export.
	//
	// Returns ErrEmptyInput if the table has no rows, and an
	// *tradectltranslate.UnrecognizedFormatError if the header matches neither
	// export format. No other condition fails an import.
	Import(ctx context.Context, table *brokercsv.Table) (*Result, error)
	// ImportFile reads and imports the export at filePath.
	ImportFile(ctx context.Context, filePath string) (*Result, error)
}

// ImporterOption is an option for a new Importer.
type ImporterOption func(*importer)

// ImporterWithAccount sets the account given to executions whose account
// column is empty.
func ImporterWithAccount(account string) ImporterOption {
	return func(importer *importer) {
		importer.account = account
	}
}

// ImporterWithReadOptions sets the options used to read files in ImportFile.
func ImporterWithReadOptions(readOptions ...brokercsv.ReadOption) ImporterOption {
	return func(importer *importer) {
		importer.readOptions = append(importer.readOptions, readOptions...)
	}
}

// NewImporter returns a new Importer.
func NewImporter(logger *slog.Logger, options ...ImporterOption) Importer {
	importer := &importer{
		logger: logger,
	}
	for _, option := range options {
		option(importer)
	}
	return importer
}

// *** PRIVATE ***

type importer struct {
	logger      *slog.Logger
	account     string
	readOptions []brokercsv.ReadOption
}

func (i *importer) ImportFile(ctx context.Context, filePath string) (*Result, error) {
	table, err := brokercsv.ReadFile(filePath, i.readOptions...)
	if err != nil {
		if errors.Is(err, brokercsv.ErrEmpty) {
			return nil, fmt.Errorf("%s: %w", filePath, ErrEmptyInput)
		}
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return i.Import(ctx, table)
}

func (i *importer) Import(ctx context.Context, table *brokercsv.Table) (_ *Result, retErr error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "tradectlimport.Import")
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
			span.SetStatus(codes.Error, retErr.Error())
		}
		span.End()
	}()

	// An export without data rows fails the whole import.
	if table == nil || len(table.Rows) == 0 {
		return nil, ErrEmptyInput
	}
	// Detect the format once for the whole export.
	format := tradectltranslate.DetectFormat(table.Header)
	translator, err := tradectltranslate.NewTranslator(format, table.Header)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("tradectl.format", format.String()))

	// Translate each row, counting rows the translator rejects.
	stats := Stats{
		RowsRead: len(table.Rows),
	}
	executions := make([]tradectlexec.Execution, 0, len(table.Rows))
	for rowIndex, record := range table.Rows {
		execution, ok := translator(record)
		if !ok {
			stats.RowsDropped++
			// Row numbers are 1-based and count the header.
			i.logger.DebugContext(ctx, "dropped row", "format", format.String(), "row", rowIndex+2)
			continue
		}
		// Fill in the selected account for rows that name none.
		if execution.Account == "" {
			execution.Account = i.account
		}
		executions = append(executions, execution)
	}
	stats.Executions = len(executions)

	// Sort the whole batch, then match entries and exits FIFO per account and instrument.
	tradectlexec.SortChronologically(executions)
	matchResult := tradectlmatch.Match(executions)
	stats.UnknownRole = matchResult.UnknownRole
	stats.UnmatchedExits = matchResult.UnmatchedExits
	stats.PendingEntries = matchResult.PendingEntries
	stats.MatchedTrades = len(matchResult.Trades)

	// Record the counters on the span and in the log.
	span.SetAttributes(
		attribute.Int("tradectl.rows_read", stats.RowsRead),
		attribute.Int("tradectl.rows_dropped", stats.RowsDropped),
		attribute.Int("tradectl.executions", stats.Executions),
		attribute.Int("tradectl.unmatched_exits", stats.UnmatchedExits),
		attribute.Int("tradectl.matched_trades", stats.MatchedTrades),
	)
	i.logger.InfoContext(
		ctx,
		"imported export",
		"format", format.String(),
		"rows_read", stats.RowsRead,
		"rows_dropped", stats.RowsDropped,
		"executions", stats.Executions,
		"unknown_role", stats.UnknownRole,
		"unmatched_exits", stats.UnmatchedExits,
		"pending_entries", stats.PendingEntries,
		"matched_trades", stats.MatchedTrades,
	)
	return &Result{
		Format: format,
		Trades: matchResult.Trades,
		Stats:  stats,
	}, nil
}
