package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	ElapsedSec       float64 `csv:"elapsed"`

	// Frame pacing during window
	Frames int     `csv:"frames"`
	FPS    float64 `csv:"fps"`
	MeanDT float64 `csv:"mean_dt"`

	// Population at window end
	Particles int `csv:"particles"`
	Offscreen int `csv:"offscreen"`

	// Events during window
	Spawned int `csv:"spawned"`
	Culled  int `csv:"culled"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Age distribution (sampled at window end)
	AgeMean float64 `csv:"age_mean"`
	AgeP50  float64 `csv:"age_p50"`
	AgeP90  float64 `csv:"age_p90"`
}

// Percentile returns the p-th quantile of a sorted slice using the
// empirical CDF. p is clamped to [0, 1]. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std, P50, P90 float64
}

// Summarize computes mean, population standard deviation and percentiles.
// values is sorted in place.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sort.Float64s(values)
	mean, std := stat.PopMeanStdDev(values, nil)
	return Distribution{
		Mean: mean,
		Std:  std,
		P50:  Percentile(values, 0.50),
		P90:  Percentile(values, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("elapsed", s.ElapsedSec),
		slog.Int("frames", s.Frames),
		slog.Float64("fps", s.FPS),
		slog.Float64("mean_dt", s.MeanDT),
		slog.Int("particles", s.Particles),
		slog.Int("offscreen", s.Offscreen),
		slog.Int("spawned", s.Spawned),
		slog.Int("culled", s.Culled),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_p50", s.AgeP50),
		slog.Float64("age_p90", s.AgeP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"elapsed", s.ElapsedSec,
		"frames", s.Frames,
		"fps", s.FPS,
		"particles", s.Particles,
		"offscreen", s.Offscreen,
		"spawned", s.Spawned,
		"culled", s.Culled,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"age_mean", s.AgeMean,
	)
}
