package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/nilsson-quant/tsforecast/metrics"
	"github.com/nilsson-quant/tsforecast/model"
	"github.com/nilsson-quant/tsforecast/series"
	"github.com/nilsson-quant/tsforecast/transform"
)

// CandidateDescriptor names a factory for one auto-selection candidate.
type CandidateDescriptor struct {
	Name    string
	Factory ForecasterFactory
}

// ScoringFunc reduces a metrics map to a single score; lower is better. The
// second return value reports whether the map yielded a usable score.
type ScoringFunc func(metrics map[string]float64) (float64, bool)

// MAEScoring is the default scoring function: the fold/holdout MAE.
func MAEScoring(m map[string]float64) (float64, bool) {
	v, ok := m["mae"]
	return v, ok
}

// AutoSelectOptions configures a single auto-selection run.
type AutoSelectOptions struct {
	Horizon         int
	Scoring         ScoringFunc
	Actual          []float64 // holdout actuals, required when IncludeBacktest is false
	Baseline        []float64 // optional baseline forecast for MASE/RMAE
	PipelineFactory func() *transform.Pipeline
	IncludeBacktest bool
	CVConfig        *CVConfig
}

// CandidateResult is one candidate's outcome after scoring.
type CandidateResult struct {
	Name    string
	Score   float64
	Metrics map[string]float64
	AIC     float64
	HasAIC  bool
	BIC     float64
	HasBIC  bool
}

// CandidateFailure records why a candidate was dropped from ranking.
type CandidateFailure struct {
	Name string
	Err  error
}

// AutoSelectResult is the outcome of AutoSelect: the winning candidate, the
// full ranked list (best first), and any candidates that failed.
type AutoSelectResult struct {
	Best       string
	BestResult *CandidateResult
	Ranked     []CandidateResult
	Failures   []CandidateFailure
}

func buildCandidate(factory ForecasterFactory, pipelineFactory func() *transform.Pipeline) (model.Forecaster, error) {
	inner, err := factory()
	if err != nil {
		return nil, err
	}
	if pipelineFactory == nil {
		return inner, nil
	}
	pipeline := pipelineFactory()
	return model.NewPipelineForecaster(pipeline, inner)
}

// AutoSelect fits every candidate on ts, scores each per opts, and returns
// the lowest-scoring candidate. A candidate failure at any stage (build, fit,
// predict, backtest, scoring) is captured in Failures rather than aborting
// the run; selection continues with whatever candidates remain.
func AutoSelect(ts *series.Series, candidates []CandidateDescriptor, opts *AutoSelectOptions) (*AutoSelectResult, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("at least one candidate must be supplied: %w", ErrInvalidArgument)
	}
	if opts == nil {
		opts = &AutoSelectOptions{}
	}
	scoring := opts.Scoring
	if scoring == nil {
		scoring = MAEScoring
	}
	horizon := opts.Horizon
	if horizon < 1 {
		horizon = 1
	}
	if opts.IncludeBacktest && opts.CVConfig == nil {
		return nil, fmt.Errorf("cv config is required when include_backtest is set: %w", ErrInvalidArgument)
	}
	if !opts.IncludeBacktest && len(opts.Actual) == 0 {
		return nil, fmt.Errorf("holdout actuals are required when include_backtest is not set: %w", ErrInvalidArgument)
	}

	var ranked []CandidateResult
	var failures []CandidateFailure
	var firstSuccess *CandidateResult

	for _, c := range candidates {
		result, err := scoreCandidate(ts, c, horizon, scoring, opts)
		if result != nil && firstSuccess == nil {
			cp := *result
			firstSuccess = &cp
		}
		if err != nil {
			failures = append(failures, CandidateFailure{Name: c.Name, Err: err})
			continue
		}
		ranked = append(ranked, *result)
	}

	if len(ranked) == 0 {
		if firstSuccess != nil {
			return &AutoSelectResult{Best: firstSuccess.Name, BestResult: firstSuccess, Failures: failures}, nil
		}
		return nil, fmt.Errorf("no candidate could be fit and scored: %w", ErrNumericalFailure)
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
	best := ranked[0]
	return &AutoSelectResult{Best: best.Name, BestResult: &best, Ranked: ranked, Failures: failures}, nil
}

func scoreCandidate(ts *series.Series, c CandidateDescriptor, horizon int, scoring ScoringFunc, opts *AutoSelectOptions) (*CandidateResult, error) {
	forecaster, err := buildCandidate(c.Factory, opts.PipelineFactory)
	if err != nil {
		return nil, err
	}
	if err := forecaster.Fit(ts); err != nil {
		return nil, err
	}
	forecast, err := forecaster.Predict(horizon)
	if err != nil {
		return nil, err
	}

	result := &CandidateResult{Name: c.Name}
	if ic, ok := forecaster.(model.InformationCriteria); ok {
		if aic, ok2 := ic.AIC(); ok2 {
			result.AIC, result.HasAIC = aic, true
		}
		if bic, ok2 := ic.BIC(); ok2 {
			result.BIC, result.HasBIC = bic, true
		}
	}

	var metricsMap map[string]float64
	if opts.IncludeBacktest {
		candidateFactory := func() (model.Forecaster, error) { return buildCandidate(c.Factory, opts.PipelineFactory) }
		bt, err := RollingBacktest(ts, opts.CVConfig, candidateFactory, nil)
		if err != nil {
			return nil, err
		}
		metricsMap = make(map[string]float64, len(bt.Aggregate))
		for k, stat := range bt.Aggregate {
			metricsMap[k] = stat.Mean
		}
	} else {
		metricsMap, err = computeMetrics(forecast.Point[0], opts.Actual)
		if err != nil {
			return nil, err
		}
		if len(opts.Baseline) > 0 {
			if mase, ok, err := metrics.MASE(forecast.Point[0], opts.Actual, opts.Baseline); err == nil && ok {
				metricsMap["mase"] = mase
			}
		}
	}
	result.Metrics = metricsMap

	score, ok := scoring(metricsMap)
	if !ok || math.IsNaN(score) || math.IsInf(score, 0) {
		return result, fmt.Errorf("scoring function found no usable metric for candidate %q: %w", c.Name, ErrNumericalFailure)
	}
	result.Score = score
	return result, nil
}
