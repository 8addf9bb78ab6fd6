// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlstore persists matched trades.
//
// Each trade is stored under a dedupe key derived from its account, date, entry
// and exit times, instrument, and realized P&L. Saving a trade whose key is
// already stored is a no-op, so re-importing the same export is safe.
package tradectlstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bufdev/tradectl/internal/pkg/backoff"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlconfig"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// StoredTrade is a matched trade read back from the store.
type StoredTrade struct {
	tradectlmatch.MatchedTrade
	// ID is the storage identifier.
	ID uint64 `json:"id"`
	// ImportedAt is when the trade was first saved.
	ImportedAt time.Time `json:"importado"`
}

// SaveResult is the result of SaveTrades.
type SaveResult struct {
	// Inserted is the number of trades written.
	Inserted int
	// Duplicates is the number of trades skipped because they were already stored
	// or appeared earlier in the same batch.
	Duplicates int
}

// TradeFilter filters ListTrades.
type TradeFilter struct {
	// Account restricts results to one account if set.
	Account string
	// Instrument restricts results to one instrument if set.
	Instrument string
	// Limit caps the number of results if positive.
	Limit int
}

// Store persists matched trades.
type Store interface {
	// SaveTrades saves trades, skipping any whose dedupe key is already stored.
	SaveTrades(ctx context.Context, trades []tradectlmatch.MatchedTrade) (SaveResult, error)
	// ListTrades lists stored trades, newest first.
	ListTrades(ctx context.Context, filter TradeFilter) ([]StoredTrade, error)
	// Close closes the underlying database.
	Close() error
}

// Open opens the configured database and migrates its schema.
//
// Network databases are retried with backoff until they accept connections.
// Malformed DSNs and SQLite failures are not retried.
func Open(ctx context.Context, logger *slog.Logger, databaseConfig tradectlconfig.DatabaseConfig) (Store, error) {
	dialector, err := newDialector(databaseConfig)
	if err != nil {
		return nil, err
	}
	var db *gorm.DB
	if err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context, attempt int) error {
		if attempt > 0 {
			logger.InfoContext(ctx, "retrying database connection", "type", string(databaseConfig.Type), "attempt", attempt+1)
		}
		// A DSN that does not parse will never connect.
		if err := checkDSN(databaseConfig); err != nil {
			return backoff.Permanent(err)
		}
		openedDB, err := gorm.Open(dialector, &gorm.Config{
			Logger: newGormLogger(),
		})
		if err != nil {
			// SQLite is a local file, so a failure will not go away by waiting.
			if databaseConfig.Type == tradectlconfig.DatabaseTypeSQLite {
				return backoff.Permanent(err)
			}
			return err
		}
		db = openedDB
		return nil
	}); err != nil {
		return nil, fmt.Errorf("opening %s database: %w", databaseConfig.Type, err)
	}
	// Create or update the trades table and its dedupe index.
	if err := db.WithContext(ctx).AutoMigrate(&tradeRecord{}); err != nil {
		return nil, errors.Join(fmt.Errorf("migrating database: %w", err), closeDB(db))
	}
	logger.DebugContext(ctx, "opened database", "type", string(databaseConfig.Type))
	return &store{
		logger: logger,
		db:     db,
	}, nil
}

// DedupeKey returns the dedupe key of a trade.
//
// P&L is formatted to 2 decimal places so that float formatting differences
// do not produce distinct keys for the same trade.
func DedupeKey(trade tradectlmatch.MatchedTrade) string {
	hash := sha256.Sum256([]byte(strings.Join(
		[]string{
			trade.Account,
			trade.Date,
			trade.EntryTime,
			trade.ExitTime,
			trade.Instrument,
			decimal.NewFromFloat(trade.RealizedPnl).StringFixed(2),
		},
		"|",
	)))
	return hex.EncodeToString(hash[:])
}

// *** PRIVATE ***

type store struct {
	logger *slog.Logger
	db     *gorm.DB
}

func (s *store) SaveTrades(ctx context.Context, trades []tradectlmatch.MatchedTrade) (SaveResult, error) {
	var saveResult SaveResult
	if len(trades) == 0 {
		return saveResult, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seenKeys := make(map[string]struct{}, len(trades))
		for _, trade := range trades {
			record := newTradeRecord(trade)
			// Skip trades repeated within this batch.
			if _, ok := seenKeys[record.DedupeKey]; ok {
				saveResult.Duplicates++
				continue
			}
			seenKeys[record.DedupeKey] = struct{}{}
			// Insert, leaving an already stored trade untouched.
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "dedupe_key"}},
				DoNothing: true,
			}).Create(record)
			if result.Error != nil {
				return fmt.Errorf("saving trade: %w", result.Error)
			}
			// No row affected means the dedupe key was already stored.
			if result.RowsAffected == 0 {
				s.logger.DebugContext(ctx, "skipping duplicate trade", "account", trade.Account, "dedupe_key", record.DedupeKey)
				saveResult.Duplicates++
				continue
			}
			saveResult.Inserted++
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}
	return saveResult, nil
}

func (s *store) ListTrades(ctx context.Context, filter TradeFilter) ([]StoredTrade, error) {
	query := s.db.WithContext(ctx).Model(&tradeRecord{})
	if filter.Account != "" {
		query = query.Where("account = ?", filter.Account)
	}
	if filter.Instrument != "" {
		query = query.Where("instrument = ?", filter.Instrument)
	}
	// Newest first, with the insertion order breaking ties.
	query = query.Order("date DESC").Order("exit_time DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []tradeRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing trades: %w", err)
	}
	storedTrades := make([]StoredTrade, len(records))
	for i, record := range records {
		storedTrades[i] = record.toStoredTrade()
	}
	return storedTrades, nil
}

func (s *store) Close() error {
	return closeDB(s.db)
}

// tradeRecord is the database row of a trade.
type tradeRecord struct {
	ID            uint64    `gorm:"primaryKey"`
	DedupeKey     string    `gorm:"size:64;not null;uniqueIndex"`
	Account       string    `gorm:"size:128;index"`
	Date          string    `gorm:"size:10;index"`
	Direction     string    `gorm:"size:64"`
	Instrument    string    `gorm:"size:64;index"`
	StrategyLabel string    `gorm:"size:128"`
	Quantity      int       `gorm:"not null"`
	EntryTime     string    `gorm:"size:8"`
	ExitTime      string    `gorm:"size:8"`
	EntryPrice    float64   `gorm:"not null"`
	ExitPrice     float64   `gorm:"not null"`
	RealizedPnl   float64   `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (tradeRecord) TableName() string {
	return "trades"
}

func newTradeRecord(trade tradectlmatch.MatchedTrade) *tradeRecord {
	return &tradeRecord{
		DedupeKey:     DedupeKey(trade),
		Account:       trade.Account,
		Date:          trade.Date,
		Direction:     trade.Direction,
		Instrument:    trade.Instrument,
		StrategyLabel: trade.StrategyLabel,
		Quantity:      trade.Quantity,
		EntryTime:     trade.EntryTime,
		ExitTime:      trade.ExitTime,
		EntryPrice:    trade.EntryPrice,
		ExitPrice:     trade.ExitPrice,
		RealizedPnl:   trade.RealizedPnl,
	}
}

func (r tradeRecord) toStoredTrade() StoredTrade {
	return StoredTrade{
		MatchedTrade: tradectlmatch.MatchedTrade{
			Date:          r.Date,
			Direction:     r.Direction,
			Instrument:    r.Instrument,
			StrategyLabel: r.StrategyLabel,
			Account:       r.Account,
			Quantity:      r.Quantity,
			EntryTime:     r.EntryTime,
			ExitTime:      r.ExitTime,
			EntryPrice:    r.EntryPrice,
			ExitPrice:     r.ExitPrice,
			RealizedPnl:   r.RealizedPnl,
		},
		ID:         r.ID,
		ImportedAt: r.CreatedAt,
	}
}

func newDialector(databaseConfig tradectlconfig.DatabaseConfig) (gorm.Dialector, error) {
	switch databaseConfig.Type {
	case tradectlconfig.DatabaseTypeSQLite:
		if err := ensureSQLiteDir(databaseConfig.DSN); err != nil {
			return nil, err
		}
		return sqlite.Open(databaseConfig.DSN), nil
	case tradectlconfig.DatabaseTypePostgres:
		return postgres.Open(databaseConfig.DSN), nil
	case tradectlconfig.DatabaseTypeMySQL:
		return mysql.Open(databaseConfig.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", databaseConfig.Type)
	}
}

// checkDSN parses network database DSNs with the drivers' own parsers.
func checkDSN(databaseConfig tradectlconfig.DatabaseConfig) error {
	var err error
	switch databaseConfig.Type {
	case tradectlconfig.DatabaseTypePostgres:
		_, err = pgx.ParseConfig(databaseConfig.DSN)
	case tradectlconfig.DatabaseTypeMySQL:
		_, err = mysqldriver.ParseDSN(databaseConfig.DSN)
	}
	if err != nil {
		return fmt.Errorf("invalid %s DSN: %w", databaseConfig.Type, err)
	}
	return nil
}

// ensureSQLiteDir creates the parent directory of a SQLite database file.
func ensureSQLiteDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.Default.LogMode(gormlogger.Silent)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
