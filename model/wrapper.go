package model

import (
	"fmt"

	"github.com/nilsson-quant/tsforecast/series"
	"github.com/nilsson-quant/tsforecast/transform"
)

// PipelineForecaster fits a transform.Pipeline on the training series, fits
// an inner Forecaster on the transformed values, and inverse-transforms every
// point and interval the inner forecaster produces. Fitted values and
// residuals are reported on the transformed scale, matching what the inner
// model actually optimized against.
type PipelineForecaster struct {
	Pipeline *transform.Pipeline
	Inner    Forecaster

	isFit bool
}

// NewPipelineForecaster wraps inner with pipeline. Neither may be nil.
func NewPipelineForecaster(pipeline *transform.Pipeline, inner Forecaster) (*PipelineForecaster, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline must not be nil: %w", ErrInvalidArgument)
	}
	if inner == nil {
		return nil, fmt.Errorf("inner forecaster must not be nil: %w", ErrInvalidArgument)
	}
	return &PipelineForecaster{Pipeline: pipeline, Inner: inner}, nil
}

func (m *PipelineForecaster) Name() string {
	return fmt.Sprintf("Pipeline(%s)", m.Inner.Name())
}

func (m *PipelineForecaster) Fit(ts *series.Series) error {
	y := append([]float64(nil), ts.Univariate()...)
	if err := m.Pipeline.FitTransform(y); err != nil {
		return fmt.Errorf("pipeline fit-transform failed: %w", err)
	}
	transformed, err := series.NewUnivariate(ts.Times(), y)
	if err != nil {
		return fmt.Errorf("building transformed series failed: %w", err)
	}
	if err := m.Inner.Fit(transformed); err != nil {
		return err
	}
	m.isFit = true
	return nil
}

func (m *PipelineForecaster) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	f, err := m.Inner.Predict(h)
	if err != nil {
		return nil, err
	}
	point := append([]float64(nil), f.Point[0]...)
	if err := m.Pipeline.InverseTransform(point); err != nil {
		return nil, fmt.Errorf("pipeline inverse-transform failed: %w", err)
	}
	return series.NewForecast(point), nil
}

// PredictWithConfidence inverse-transforms the inner forecaster's point,
// lower, and upper series independently. This is approximate: a nonlinear
// transform's inverse does not generally preserve the intended coverage of an
// interval computed on the transformed scale, but it keeps bounds bracketing
// the point forecast for monotone transforms, which every transform in this
// package is.
func (m *PipelineForecaster) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	predictor, ok := m.Inner.(ConfidencePredictor)
	if !ok {
		return nil, fmt.Errorf("inner forecaster %s does not support confidence intervals: %w", m.Inner.Name(), ErrDependencyUnavailable)
	}
	f, err := predictor.PredictWithConfidence(h, coverage)
	if err != nil {
		return nil, err
	}

	point := append([]float64(nil), f.Point[0]...)
	if err := m.Pipeline.InverseTransform(point); err != nil {
		return nil, fmt.Errorf("pipeline inverse-transform failed: %w", err)
	}
	if f.Lower == nil {
		return series.NewForecast(point), nil
	}

	lower := append([]float64(nil), f.Lower[0]...)
	upper := append([]float64(nil), f.Upper[0]...)
	if err := m.Pipeline.InverseTransform(lower); err != nil {
		return nil, fmt.Errorf("pipeline inverse-transform of lower bound failed: %w", err)
	}
	if err := m.Pipeline.InverseTransform(upper); err != nil {
		return nil, fmt.Errorf("pipeline inverse-transform of upper bound failed: %w", err)
	}
	for i := range lower {
		if lower[i] > upper[i] {
			lower[i], upper[i] = upper[i], lower[i]
		}
	}
	return series.NewForecast(point).WithIntervals([][]float64{lower}, [][]float64{upper})
}

func (m *PipelineForecaster) FittedValues() []float64 {
	fv, ok := m.Inner.(FittedValuer)
	if !ok {
		return nil
	}
	return fv.FittedValues()
}

func (m *PipelineForecaster) Residuals() []float64 {
	r, ok := m.Inner.(Residualer)
	if !ok {
		return nil
	}
	return r.Residuals()
}
