// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectlserver

import (
	"github.com/bufdev/tradectl/internal/tradectl/tradectlimport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	importResultSuccess = "success"
	importResultError   = "error"
)

type metrics struct {
	imports         *prometheus.CounterVec
	rowsDropped     prometheus.Counter
	tradesMatched   prometheus.Counter
	exitsUnmatched  prometheus.Counter
	tradesDuplicate prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)
	return &metrics{
		imports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradectl_imports_total",
				Help: "Total number of imports by export format and result",
			},
			[]string{"format", "result"},
		),
		rowsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tradectl_rows_dropped_total",
				Help: "Total number of export rows rejected during translation",
			},
		),
		tradesMatched: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tradectl_trades_matched_total",
				Help: "Total number of matched trades",
			},
		),
		exitsUnmatched: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tradectl_exits_unmatched_total",
				Help: "Total number of exits dropped for having no pending entry",
			},
		),
		tradesDuplicate: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tradectl_trades_duplicate_total",
				Help: "Total number of matched trades skipped as already saved",
			},
		),
	}
}

func (m *metrics) observeImport(format string, stats tradectlimport.Stats) {
	m.imports.WithLabelValues(format, importResultSuccess).Inc()
	m.rowsDropped.Add(float64(stats.RowsDropped))
	m.tradesMatched.Add(float64(stats.MatchedTrades))
	m.exitsUnmatched.Add(float64(stats.UnmatchedExits))
}

func (m *metrics) observeImportError(format string) {
	m.imports.WithLabelValues(format, importResultError).Inc()
}
