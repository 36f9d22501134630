package anticheat

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		stats  Stats
		reason string
	}{
		{
			name:  "plausible game",
			stats: Stats{GameDurationMs: 10000, ReportedDurationMs: 10000, Pipes: 5, Gifts: 2, Total: 9},
		},
		{
			name:   "duration mismatch",
			stats:  Stats{GameDurationMs: 20000, ReportedDurationMs: 10000, Pipes: 5, Gifts: 2, Total: 9},
			reason: ReasonDurationMismatch,
		},
		{
			name:  "mismatch skipped for short reported duration",
			stats: Stats{GameDurationMs: 20000, ReportedDurationMs: 4000, Pipes: 2, Gifts: 1, Total: 5},
		},
		{
			name:   "too many actions per second",
			stats:  Stats{GameDurationMs: 10000, ReportedDurationMs: 10000, Pipes: 5, Gifts: 2, Total: 40},
			reason: ReasonActionRate,
		},
		{
			name:   "too many pipes per second",
			stats:  Stats{GameDurationMs: 10000, ReportedDurationMs: 10000, Pipes: 9, Gifts: 1, Total: 20},
			reason: ReasonPipeRate,
		},
		{
			name:   "too many gifts per second",
			stats:  Stats{GameDurationMs: 10000, ReportedDurationMs: 10000, Pipes: 2, Gifts: 6, Total: 10},
			reason: ReasonGiftRate,
		},
		{
			name:   "pipes without gifts",
			stats:  Stats{GameDurationMs: 60000, ReportedDurationMs: 60000, Pipes: 25, Gifts: 0, Total: 27},
			reason: ReasonSuspiciousPattern,
		},
		{
			name:  "twenty pipes without gifts is allowed",
			stats: Stats{GameDurationMs: 60000, ReportedDurationMs: 60000, Pipes: 20, Gifts: 0, Total: 22},
		},
		{
			name:   "infinite reported duration",
			stats:  Stats{GameDurationMs: 7000, ReportedDurationMs: math.Inf(1), Pipes: 5, Total: 7},
			reason: ReasonDurationMismatch,
		},
		{
			name:   "nan reported duration",
			stats:  Stats{GameDurationMs: 7000, ReportedDurationMs: math.NaN(), Pipes: 5, Total: 7},
			reason: ReasonDurationMismatch,
		},
		{
			name:  "zero duration uses one second",
			stats: Stats{GameDurationMs: 0, ReportedDurationMs: 0, Total: 2},
		},
		{
			// 100 pipes in 10s trips the global rate before the pipe rate.
			name:   "hundred pipes in ten seconds",
			stats:  Stats{GameDurationMs: 10000, ReportedDurationMs: 10000, Pipes: 100, Total: 102},
			reason: ReasonActionRate,
		},
	}

	p := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := p.Evaluate(tt.stats)
			if tt.reason == "" {
				if v != nil {
					t.Fatalf("unexpected violation %s: %s", v.Reason, v.Message)
				}
				return
			}
			if v == nil {
				t.Fatalf("expected %s, got none", tt.reason)
			}
			if v.Reason != tt.reason {
				t.Fatalf("reason = %s, want %s", v.Reason, tt.reason)
			}
			if v.Message == "" {
				t.Fatal("violation has no message")
			}
			if got := v.Details["gameDurationSeconds"]; got != tt.stats.DurationSeconds() {
				t.Fatalf("gameDurationSeconds = %v, want %v", got, tt.stats.DurationSeconds())
			}
		})
	}
}

func TestEvaluateDurationMismatchDetails(t *testing.T) {
	v := DefaultPolicy().Evaluate(Stats{GameDurationMs: 20000, ReportedDurationMs: 10000, Pipes: 5, Gifts: 2, Total: 9})
	if v == nil {
		t.Fatal("expected violation")
	}
	if v.Message != "Invalid game duration. Duration mismatch detected." {
		t.Fatalf("message = %q", v.Message)
	}
	if v.Details["differencePercent"] != 100 {
		t.Fatalf("differencePercent = %v", v.Details["differencePercent"])
	}
}

func TestEvaluatePipeSpacing(t *testing.T) {
	// With the default rates the spacing check is shadowed by the pipe rate,
	// so loosen the rates to reach it.
	p := DefaultPolicy()
	p.MaxPipesPerSecond = 10
	p.MaxActionsPerSecond = 10

	v := p.Evaluate(Stats{GameDurationMs: 2000, ReportedDurationMs: 2000, Pipes: 5, Gifts: 1, Total: 7})
	if v == nil || v.Reason != ReasonPipeSpacing {
		t.Fatalf("violation = %+v, want %s", v, ReasonPipeSpacing)
	}
	if v.Details["averageTimeBetweenPipes"] != 0.4 {
		t.Fatalf("averageTimeBetweenPipes = %v", v.Details["averageTimeBetweenPipes"])
	}
}

func TestPipeCeilingCheck(t *testing.T) {
	var ceiling plausibilityCheck
	for _, c := range plausibilityChecks {
		if c.reason == ReasonPipeCeiling {
			ceiling = c
		}
	}
	if ceiling.test == nil {
		t.Fatal("pipe ceiling check not registered")
	}

	p := DefaultPolicy()
	if !ceiling.skip(p, Stats{GameDurationMs: 1000, Pipes: 10}) {
		t.Error("ten pipes should skip the ceiling check")
	}

	// floor(8.4s / 0.8) = 10 pipes at most.
	_, details, failed := ceiling.test(p, Stats{GameDurationMs: 8400, Pipes: 11})
	if !failed {
		t.Fatal("11 pipes in 8.4s should exceed the ceiling")
	}
	if details["maxPossiblePipes"] != 10 || details["excess"] != 1 {
		t.Fatalf("details = %v", details)
	}
	if _, _, failed := ceiling.test(p, Stats{GameDurationMs: 9000, Pipes: 11}); failed {
		t.Fatal("11 pipes in 9s is within the ceiling")
	}
}

func TestEvaluateOrder(t *testing.T) {
	// Fails duration, rate and pattern; duration is reported first.
	v := DefaultPolicy().Evaluate(Stats{GameDurationMs: 30000, ReportedDurationMs: 6000, Pipes: 200, Total: 210})
	if v == nil || v.Reason != ReasonDurationMismatch {
		t.Fatalf("violation = %+v, want %s", v, ReasonDurationMismatch)
	}
}
