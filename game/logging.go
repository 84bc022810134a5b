package game

import "log/slog"

// afterFrame logs and records perf stats every telemetry.log_every frames.
func (g *Game) afterFrame() {
	every := g.cfg.Telemetry.LogEvery
	if every <= 0 || int(g.frame)%every != 0 {
		return
	}
	stats := g.perf.Stats()
	if g.logStats {
		stats.LogStats()
	}
	if err := g.output.WritePerf(stats, g.frame); err != nil {
		slog.Warn("failed to write perf row", "error", err)
	}
}

// logSummary logs where the session ended up.
func (g *Game) logSummary() {
	p := g.eng.Params()
	count := 0
	if f := g.eng.CurrentField(); f != nil {
		count = f.Count
	}
	slog.Info("viewer stopped",
		"frames", g.frame,
		"elapsed_s", g.elapsed,
		"theme", p.Theme,
		"density", p.Density,
		"count", count,
		"perf", g.perf.Stats(),
	)
}
