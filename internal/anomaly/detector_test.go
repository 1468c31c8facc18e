package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatHistory(n int, v float64) []float64 {
	h := make([]float64, n)
	for i := range h {
		h[i] = v
	}
	return h
}

func TestDetect_InsufficientHistory(t *testing.T) {
	r := Detect([]float64{1, 2, 3}, 100, Config{})
	assert.False(t, r.IsAnomaly)
	assert.Equal(t, 0.0, r.Confidence)
	assert.Equal(t, "insufficient_data", r.Reason)
}

func TestDetect_ZScore_DetectsOutlier(t *testing.T) {
	history := []float64{10, 11, 9, 10, 12, 9, 10, 11, 10, 9}
	r := Detect(history, 100, Config{Method: MethodZScore})
	assert.True(t, r.IsAnomaly)
}

func TestDetect_ZScore_NoAnomalyWithinRange(t *testing.T) {
	history := []float64{10, 11, 9, 10, 12, 9, 10, 11, 10, 9}
	r := Detect(history, 10, Config{Method: MethodZScore})
	assert.False(t, r.IsAnomaly)
}

func TestDetect_ZScore_ZeroVarianceHistory(t *testing.T) {
	history := flatHistory(10, 5)
	r := Detect(history, 5, Config{Method: MethodZScore})
	assert.False(t, r.IsAnomaly)

	r = Detect(history, 6, Config{Method: MethodZScore})
	assert.True(t, r.IsAnomaly)
}

func TestDetect_IQR_DetectsOutlier(t *testing.T) {
	history := []float64{10, 11, 9, 10, 12, 9, 10, 11, 10, 9, 10, 11}
	r := Detect(history, 1000, Config{Method: MethodIQR, Sensitivity: 1.5})
	assert.True(t, r.IsAnomaly)
}

func TestDetect_MovingAverage_UsesTrailingWindow(t *testing.T) {
	history := append(flatHistory(20, 100), flatHistory(10, 10)...)
	r := Detect(history, 10, Config{Method: MethodMovingAverage, Window: 10})
	assert.False(t, r.IsAnomaly)
}

func TestDetect_ConfidenceGrowsWithSampleSize(t *testing.T) {
	small := Detect(flatHistory(10, 5), 5, Config{})
	large := Detect(flatHistory(100, 5), 5, Config{})
	assert.Less(t, small.Confidence, large.Confidence)
	assert.Equal(t, 1.0, large.Confidence)
}
