package game

import "log/slog"

// flushTelemetry closes the stats window once it has covered its duration.
func (s *Session) flushTelemetry() {
	if !s.collector.ShouldFlush() {
		return
	}

	c := s.loop.Canvas()
	stats := s.collector.Flush(s.loop.Frame(), s.loop.Particles().Particles(), c.Width(), c.Height())
	perfStats := s.loop.Perf().Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
