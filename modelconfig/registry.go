// Package modelconfig builds a model.Forecaster from a case-sensitive model
// name and a string-to-value params map, the shape a table-function caller
// layer (e.g. a columnar database extension) passes across its own boundary.
package modelconfig

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/nilsson-quant/tsforecast/model"
)

var (
	// ErrUnknownModel reports a model name not in the registry.
	ErrUnknownModel = errors.New("unknown model name")
	// ErrUnknownMetric reports a metric string outside mae|rmse|mape|smape.
	ErrUnknownMetric = errors.New("unknown metric")
)

// Build constructs a fresh, unfitted model.Forecaster for name, decoding
// params into that model's configuration. Unsupplied keys fall back to the
// model's documented default. Build never mutates params.
func Build(name string, params map[string]any) (model.Forecaster, error) {
	switch name {
	case "Naive":
		return model.NewNaive(), nil
	case "SMA":
		window, err := paramInt(params, "window", 3)
		if err != nil {
			return nil, err
		}
		return model.NewSMA(window)
	case "SES":
		alpha, err := paramFloat(params, "alpha", 0.3)
		if err != nil {
			return nil, err
		}
		return model.NewSES(alpha)
	case "SESOptimized":
		return model.NewSESOptimized(), nil
	case "Holt":
		alpha, err := paramFloat(params, "alpha", 0.3)
		if err != nil {
			return nil, err
		}
		beta, err := paramFloat(params, "beta", 0.1)
		if err != nil {
			return nil, err
		}
		if phi, ok, err := paramFloatOptional(params, "phi"); err != nil {
			return nil, err
		} else if ok {
			return model.NewDampedHolt(alpha, beta, phi)
		}
		return model.NewHolt(alpha, beta)
	case "HoltWinters", "SeasonalES":
		return buildHoltWinters(params)
	case "SeasonalESOptimized":
		period, err := paramInt(params, "seasonal_period", 0)
		if err != nil {
			return nil, err
		}
		method, err := paramSeasonalMethod(params)
		if err != nil {
			return nil, err
		}
		return model.NewHoltWintersOptimized(period, method)
	case "ETS":
		return buildETS(params)
	case "AutoETS":
		period, err := paramInt(params, "seasonal_period", 1)
		if err != nil {
			return nil, err
		}
		return model.NewAutoETS(period), nil
	case "ARIMA":
		return buildARIMA(params)
	case "AutoARIMA":
		maxP, err := paramInt(params, "max_p", 5)
		if err != nil {
			return nil, err
		}
		maxD, err := paramInt(params, "max_d", 2)
		if err != nil {
			return nil, err
		}
		maxQ, err := paramInt(params, "max_q", 5)
		if err != nil {
			return nil, err
		}
		return model.NewAutoARIMA(maxP, maxD, maxQ), nil
	case "Theta":
		theta, err := paramFloat(params, "theta", 2.0)
		if err != nil {
			return nil, err
		}
		return model.NewTheta(theta)
	case "OptimizedTheta":
		return model.NewOptimizedTheta(), nil
	case "DynamicTheta":
		theta, err := paramFloat(params, "theta", 2.0)
		if err != nil {
			return nil, err
		}
		window, err := paramInt(params, "window", 10)
		if err != nil {
			return nil, err
		}
		return model.NewDynamicTheta(theta, window)
	case "DynamicOptimizedTheta":
		window, err := paramInt(params, "window", 10)
		if err != nil {
			return nil, err
		}
		return model.NewDynamicOptimizedTheta(window)
	case "AutoTheta":
		window, err := paramInt(params, "window", 10)
		if err != nil {
			return nil, err
		}
		return model.NewAutoTheta(window), nil
	case "MFLES":
		return buildMFLES(params)
	case "AutoMFLES":
		return buildAutoMFLES(params)
	case "MSTL":
		periods, err := paramIntSlice(params, "seasonal_periods", nil)
		if err != nil {
			return nil, err
		}
		return model.NewMSTL(periods)
	case "AutoMSTL":
		periods, err := paramIntSlice(params, "seasonal_periods", nil)
		if err != nil {
			return nil, err
		}
		return model.NewAutoMSTL(periods), nil
	case "TBATS":
		periods, err := paramIntSlice(params, "seasonal_periods", nil)
		if err != nil {
			return nil, err
		}
		return model.NewTBATS(model.NewDefaultTBATSOptions(periods))
	case "AutoTBATS":
		periods, err := paramIntSlice(params, "seasonal_periods", nil)
		if err != nil {
			return nil, err
		}
		return model.NewAutoTBATS(periods), nil
	case "CrostonClassic":
		alpha, err := paramFloat(params, "alpha", 0.1)
		if err != nil {
			return nil, err
		}
		return model.NewCrostonClassic(alpha)
	case "CrostonOptimized":
		return model.NewCrostonOptimized(), nil
	case "CrostonSBA":
		return model.NewCrostonSBA(), nil
	case "ADIDA":
		return model.NewADIDA(), nil
	case "IMAPA":
		return model.NewIMAPA(), nil
	case "TSB":
		alphaProb, err := paramFloat(params, "alpha", 0.1)
		if err != nil {
			return nil, err
		}
		alphaMagnitude, err := paramFloat(params, "beta", 0.1)
		if err != nil {
			return nil, err
		}
		return model.NewTSB(alphaProb, alphaMagnitude)
	case "SeasonalNaive":
		period, err := paramInt(params, "seasonal_period", 0)
		if err != nil {
			return nil, err
		}
		return model.NewSeasonalNaive(period)
	case "SeasonalWindowAverage":
		period, err := paramInt(params, "seasonal_period", 0)
		if err != nil {
			return nil, err
		}
		window, err := paramInt(params, "window", 2)
		if err != nil {
			return nil, err
		}
		return model.NewSeasonalWindowAverage(period, window)
	case "RandomWalkDrift":
		return model.NewRandomWalkDrift(), nil
	default:
		return nil, fmt.Errorf("model name %q is not registered: %w", name, ErrUnknownModel)
	}
}

func buildHoltWinters(params map[string]any) (model.Forecaster, error) {
	alpha, err := paramFloat(params, "alpha", 0.3)
	if err != nil {
		return nil, err
	}
	beta, err := paramFloat(params, "beta", 0.1)
	if err != nil {
		return nil, err
	}
	gamma, err := paramFloat(params, "gamma", 0.1)
	if err != nil {
		return nil, err
	}
	period, err := paramInt(params, "seasonal_period", 0)
	if err != nil {
		return nil, err
	}
	method, err := paramSeasonalMethod(params)
	if err != nil {
		return nil, err
	}
	return model.NewHoltWinters(alpha, beta, gamma, period, method)
}

func paramSeasonalMethod(params map[string]any) (model.SeasonalMethod, error) {
	raw, ok := params["method"]
	if !ok {
		return model.SeasonalAdditive, nil
	}
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("param \"method\" must be a string: %w", model.ErrInvalidArgument)
	}
	switch s {
	case "additive", "":
		return model.SeasonalAdditive, nil
	case "multiplicative":
		return model.SeasonalMultiplicative, nil
	default:
		return 0, fmt.Errorf("param \"method\" %q must be additive or multiplicative: %w", s, model.ErrInvalidArgument)
	}
}

func buildETS(params map[string]any) (model.Forecaster, error) {
	errType, err := paramETSError(params)
	if err != nil {
		return nil, err
	}
	trendType, err := paramETSTrend(params)
	if err != nil {
		return nil, err
	}
	seasonType, err := paramETSSeason(params)
	if err != nil {
		return nil, err
	}
	period, err := paramInt(params, "seasonal_period", 1)
	if err != nil {
		return nil, err
	}
	return model.NewETS(errType, trendType, seasonType, period)
}

func paramETSError(params map[string]any) (model.ETSErrorType, error) {
	s, _ := paramString(params, "error", "A")
	switch s {
	case "A":
		return model.ETSErrorAdditive, nil
	case "M":
		return model.ETSErrorMultiplicative, nil
	default:
		return 0, fmt.Errorf("param \"error\" %q must be A or M: %w", s, model.ErrInvalidArgument)
	}
}

func paramETSTrend(params map[string]any) (model.ETSTrendType, error) {
	s, _ := paramString(params, "trend", "N")
	switch s {
	case "N":
		return model.ETSTrendNone, nil
	case "A":
		return model.ETSTrendAdditive, nil
	case "Ad":
		return model.ETSTrendAdditiveDamped, nil
	default:
		return 0, fmt.Errorf("param \"trend\" %q must be N, A, or Ad: %w", s, model.ErrInvalidArgument)
	}
}

func paramETSSeason(params map[string]any) (model.ETSSeasonType, error) {
	s, _ := paramString(params, "season", "N")
	switch s {
	case "N":
		return model.ETSSeasonNone, nil
	case "A":
		return model.ETSSeasonAdditive, nil
	case "M":
		return model.ETSSeasonMultiplicative, nil
	default:
		return 0, fmt.Errorf("param \"season\" %q must be N, A, or M: %w", s, model.ErrInvalidArgument)
	}
}

func buildARIMA(params map[string]any) (model.Forecaster, error) {
	p, err := paramInt(params, "p", 1)
	if err != nil {
		return nil, err
	}
	d, err := paramInt(params, "d", 0)
	if err != nil {
		return nil, err
	}
	q, err := paramInt(params, "q", 0)
	if err != nil {
		return nil, err
	}
	sp, err := paramInt(params, "P", 0)
	if err != nil {
		return nil, err
	}
	sd, err := paramInt(params, "D", 0)
	if err != nil {
		return nil, err
	}
	sq, err := paramInt(params, "Q", 0)
	if err != nil {
		return nil, err
	}
	period, err := paramInt(params, "s", 0)
	if err != nil {
		return nil, err
	}
	intercept, err := paramBool(params, "intercept", true)
	if err != nil {
		return nil, err
	}
	return model.NewARIMA(p, d, q, sp, sd, sq, period, intercept)
}

func buildMFLES(params map[string]any) (model.Forecaster, error) {
	opt := model.NewDefaultMFLESOptions()
	periods, err := paramIntSlice(params, "seasonal_periods", nil)
	if err != nil {
		return nil, err
	}
	opt.SeasonalPeriods = periods
	if v, ok, err := paramIntOptional(params, "max_rounds"); err != nil {
		return nil, err
	} else if ok {
		opt.MaxRounds = v
	}
	if v, ok, err := paramFloatOptional(params, "lr_trend"); err != nil {
		return nil, err
	} else if ok {
		opt.LRTrend = v
	}
	if v, ok, err := paramFloatOptional(params, "lr_season"); err != nil {
		return nil, err
	} else if ok {
		opt.LRSeason = v
	}
	if v, ok, err := paramFloatOptional(params, "lr_level"); err != nil {
		return nil, err
	} else if ok {
		opt.LRLevel = v
	}
	if v, ok, err := paramFloatOptional(params, "trend_lambda"); err != nil {
		return nil, err
	} else if ok {
		opt.TrendLambda = v
	}
	return model.NewMFLES(opt)
}

func buildAutoMFLES(params map[string]any) (model.Forecaster, error) {
	periods, err := paramIntSlice(params, "seasonal_periods", nil)
	if err != nil {
		return nil, err
	}
	horizon, err := paramInt(params, "horizon", 1)
	if err != nil {
		return nil, err
	}
	metricStr, err := paramString(params, "metric", "mae")
	if err != nil {
		return nil, err
	}
	metric, err := parseMFLESMetric(metricStr)
	if err != nil {
		return nil, err
	}
	return model.NewAutoMFLES(periods, horizon, metric), nil
}

func parseMFLESMetric(s string) (model.MFLESMetric, error) {
	switch s {
	case "mae":
		return model.MFLESMetricMAE, nil
	case "rmse":
		return model.MFLESMetricRMSE, nil
	case "mape":
		return model.MFLESMetricMAPE, nil
	case "smape":
		return model.MFLESMetricSMAPE, nil
	default:
		return 0, fmt.Errorf("metric %q must be one of mae|rmse|mape|smape: %w", s, ErrUnknownMetric)
	}
}

// paramInt reads an integer param, accepting the JSON-decoded numeric types
// goccy/go-json and encoding/json both produce (float64, json.Number, int).
func paramInt(params map[string]any, key string, def int) (int, error) {
	v, ok, err := paramIntOptional(params, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func paramIntOptional(params map[string]any, key string) (int, bool, error) {
	raw, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("param %q is not numeric: %w", key, model.ErrInvalidArgument)
		}
		return int(f), true, nil
	default:
		return 0, false, fmt.Errorf("param %q must be an integer: %w", key, model.ErrInvalidArgument)
	}
}

func paramFloat(params map[string]any, key string, def float64) (float64, error) {
	v, ok, err := paramFloatOptional(params, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func paramFloatOptional(params map[string]any, key string) (float64, bool, error) {
	raw, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("param %q is not numeric: %w", key, model.ErrInvalidArgument)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("param %q must be a float: %w", key, model.ErrInvalidArgument)
	}
}

func paramString(params map[string]any, key, def string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("param %q must be a string: %w", key, model.ErrInvalidArgument)
	}
	return s, nil
}

func paramBool(params map[string]any, key string, def bool) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("param %q must be a bool: %w", key, model.ErrInvalidArgument)
	}
	return b, nil
}

// paramIntSlice decodes a JSON array of integers, accepting both a native
// []int/[]float64/[]any (already-decoded) and a raw JSON string.
func paramIntSlice(params map[string]any, key string, def []int) ([]int, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case []int:
		return v, nil
	case []float64:
		out := make([]int, len(v))
		for i, f := range v {
			out[i] = int(f)
		}
		return out, nil
	case []any:
		out := make([]int, len(v))
		for i, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil, fmt.Errorf("param %q element %d is not numeric: %w", key, i, model.ErrInvalidArgument)
			}
			out[i] = int(f)
		}
		return out, nil
	case string:
		var out []int
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("param %q is not a JSON array of integers: %w", key, model.ErrInvalidArgument)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("param %q must be a JSON array of integers: %w", key, model.ErrInvalidArgument)
	}
}
