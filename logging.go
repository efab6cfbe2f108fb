// Package tsforecast provides a multi-model time-series forecasting and analysis
// library: data containers, reversible transforms, a polymorphic forecaster family,
// rolling-origin backtesting with auto-selection, and conformal prediction intervals.
//
// The subpackages compose bottom-up: series (data model) and numeric/metrics
// (numerical utilities) underlie transform (reversible pipelines), which underlies
// model (the forecaster family), which underlies validate (backtesting and
// auto-selection) and conformal (distribution-free intervals).
package tsforecast

import (
	"log/slog"
	"sync"
)

var (
	loggerMu sync.RWMutex
	logger   = slog.New(slog.DiscardHandler)
)

// SetLogger installs the logger that Logger returns; a nil logger is ignored.
// The default is a no-op handler. No subpackage reads this logger, so no core
// function depends on it for correctness.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// Logger returns the currently installed logger.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}
