// Package model implements the forecaster family: a single fit/predict
// contract shared by every model variant, plus optional capability
// interfaces (confidence intervals, fitted values, residuals, information
// criteria) that a variant declares by implementing them.
package model

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/nilsson-quant/tsforecast/series"
)

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFitted             = errors.New("model has not been fit")
	ErrNumericalFailure      = errors.New("numerical failure")
	ErrInsufficientData      = errors.New("insufficient data")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Forecaster is the contract every model variant implements.
type Forecaster interface {
	// Fit consumes a single value object. Fails with ErrInsufficientData when
	// the series is shorter than the model's minimum, which for seasonal
	// variants is 2*season_length.
	Fit(ts *series.Series) error

	// Predict returns a forecast of horizon h (h >= 1). h == 0 returns an
	// empty forecast and no error. Must only be called after a successful Fit.
	Predict(h int) (*series.Forecast, error)

	// Name is a stable model identifier.
	Name() string
}

// ConfidencePredictor is an optional capability: a forecast with intervals at
// an explicit coverage level.
type ConfidencePredictor interface {
	PredictWithConfidence(h int, coverage float64) (*series.Forecast, error)
}

// FittedValuer is an optional capability: read-only access to in-sample fitted
// values.
type FittedValuer interface {
	FittedValues() []float64
}

// Residualer is an optional capability: read-only access to in-sample
// residuals (actual - fitted).
type Residualer interface {
	Residuals() []float64
}

// InformationCriteria is an optional capability for models that define a
// likelihood: AIC, BIC, log-likelihood, and the effective parameter count.
type InformationCriteria interface {
	AIC() (float64, bool)
	BIC() (float64, bool)
	LogLikelihood() (float64, bool)
	ParameterCount() (int, bool)
}

// intervalBounds offsets point by a per-step half-width, one entry per
// forecast step, via gonum/floats element-wise arithmetic.
func intervalBounds(point, widths []float64) (lower, upper []float64) {
	lower = make([]float64, len(point))
	upper = make([]float64, len(point))
	floats.SubTo(lower, point, widths)
	floats.AddTo(upper, point, widths)
	return lower, upper
}
