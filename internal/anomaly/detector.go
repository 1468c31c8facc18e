// Package anomaly detects whether a new value in a numeric time
// series is anomalous relative to its historical sample, using one of
// a small set of configurable statistical methods.
package anomaly

import (
	"math"
	"sort"
)

// Method selects the statistical test applied to a history.
type Method string

const (
	MethodZScore        Method = "Z-SCORE"
	MethodIQR           Method = "IQR"
	MethodMovingAverage Method = "MOVING_AVERAGE"
)

// defaultMinHistory is the minimum sample size required before a
// verdict is attempted; below it the result is a forced non-anomaly
// with zero confidence.
const defaultMinHistory = 10

// defaultWindow is the trailing window size used by MOVING_AVERAGE.
const defaultWindow = 10

// confidenceCap is the history size at which confidence saturates at
// 1.0.
const confidenceCap = 100

// Config tunes a single Detect call. Zero values fall back to the
// package defaults.
type Config struct {
	Method      Method
	Sensitivity float64 // z-score/IQR multiplier threshold; default 2.0
	MinHistory  int
	Window      int // MOVING_AVERAGE trailing window size
}

func (c Config) withDefaults() Config {
	if c.Method == "" {
		c.Method = MethodZScore
	}
	if c.Sensitivity == 0 {
		c.Sensitivity = 2.0
	}
	if c.MinHistory == 0 {
		c.MinHistory = defaultMinHistory
	}
	if c.Window == 0 {
		c.Window = defaultWindow
	}
	return c
}

// Result is the verdict for a single value against its history.
type Result struct {
	IsAnomaly  bool
	Score      float64
	Confidence float64
	Reason     string
	Method     Method
}

// Detect decides whether value is anomalous against history, using
// cfg's method and thresholds.
func Detect(history []float64, value float64, cfg Config) Result {
	cfg = cfg.withDefaults()

	if len(history) < cfg.MinHistory {
		return Result{Reason: "insufficient_data", Method: cfg.Method}
	}

	switch cfg.Method {
	case MethodIQR:
		return detectIQR(history, value, cfg)
	case MethodMovingAverage:
		return detectMovingAverage(history, value, cfg)
	default:
		return detectZScore(history, value, cfg)
	}
}

func meanStdDev(history []float64) (mean, stddev float64) {
	sum := 0.0
	for _, v := range history {
		sum += v
	}
	mean = sum / float64(len(history))

	variance := 0.0
	for _, v := range history {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(history))
	stddev = math.Sqrt(variance)
	return
}

func detectZScore(history []float64, value float64, cfg Config) Result {
	mean, stddev := meanStdDev(history)
	const epsilon = 1e-9

	if stddev == 0 {
		isAnomaly := math.Abs(value-mean) > epsilon
		score := 0.0
		if isAnomaly {
			score = 1.0
		}
		return Result{IsAnomaly: isAnomaly, Score: score, Confidence: confidenceFor(len(history)), Method: MethodZScore}
	}

	zscore := math.Abs(value-mean) / stddev
	return Result{
		IsAnomaly:  zscore > cfg.Sensitivity,
		Score:      math.Min(1, zscore/5),
		Confidence: confidenceFor(len(history)),
		Method:     MethodZScore,
	}
}

func detectIQR(history []float64, value float64, cfg Config) Result {
	sorted := append([]float64(nil), history...)
	sort.Float64s(sorted)
	n := len(sorted)
	q1 := sorted[n/4]
	q3 := sorted[3*n/4]
	iqr := q3 - q1

	lower := q1 - cfg.Sensitivity*iqr
	upper := q3 + cfg.Sensitivity*iqr

	isAnomaly := value < lower || value > upper
	score := 0.0
	if iqr > 0 {
		var distance float64
		if value < lower {
			distance = lower - value
		} else if value > upper {
			distance = value - upper
		}
		score = math.Min(1, distance/(3*iqr))
	} else if isAnomaly {
		score = 1.0
	}

	return Result{IsAnomaly: isAnomaly, Score: score, Confidence: confidenceFor(len(history)), Method: MethodIQR}
}

func detectMovingAverage(history []float64, value float64, cfg Config) Result {
	window := history
	if len(window) > cfg.Window {
		window = window[len(window)-cfg.Window:]
	}
	mean, stddev := meanStdDev(window)

	if stddev == 0 {
		isAnomaly := value != mean
		score := 0.0
		if isAnomaly {
			score = 1.0
		}
		return Result{IsAnomaly: isAnomaly, Score: score, Confidence: confidenceFor(len(history)), Method: MethodMovingAverage}
	}

	ratio := math.Abs(value-mean) / stddev
	return Result{
		IsAnomaly:  ratio > cfg.Sensitivity,
		Score:      math.Min(1, ratio/5),
		Confidence: confidenceFor(len(history)),
		Method:     MethodMovingAverage,
	}
}

// confidenceFor grows with sample size, saturating at 1.0 once the
// history reaches confidenceCap points.
func confidenceFor(n int) float64 {
	if n >= confidenceCap {
		return 1.0
	}
	return float64(n) / float64(confidenceCap)
}
