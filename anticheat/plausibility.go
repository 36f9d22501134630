package anticheat

import (
	"fmt"
	"math"
)

// Rejection reasons recorded on quarantined sessions.
const (
	ReasonDurationMismatch  = "duration_mismatch"
	ReasonActionRate        = "too_many_actions_per_second"
	ReasonPipeRate          = "too_many_pipes_per_second"
	ReasonGiftRate          = "too_many_gifts_per_second"
	ReasonPipeSpacing       = "pipes_too_fast"
	ReasonPipeCeiling       = "too_many_pipes_for_duration"
	ReasonSuspiciousPattern = "suspicious_pattern"
)

// Stats are the figures of one finished session attempt.
type Stats struct {
	GameDurationMs     int64
	ReportedDurationMs float64
	Pipes              int64
	Gifts              int64
	Total              int64
}

func (s Stats) DurationSeconds() float64 {
	return float64(s.GameDurationMs) / 1000
}

// perSecond divides by the duration, never by less than one second.
func (s Stats) perSecond(n int64) float64 {
	return float64(n) / math.Max(s.DurationSeconds(), 1)
}

// Violation is a failed plausibility check.
type Violation struct {
	Reason  string
	Message string
	Details map[string]float64
}

type plausibilityCheck struct {
	reason string
	skip   func(p Policy, s Stats) bool
	test   func(p Policy, s Stats) (string, map[string]float64, bool)
}

// plausibilityChecks run in this order; the first failure is reported.
var plausibilityChecks = []plausibilityCheck{
	{
		reason: ReasonDurationMismatch,
		skip: func(p Policy, s Stats) bool {
			floor := float64(p.DurationCheckMin.Milliseconds())
			return s.ReportedDurationMs <= floor || float64(s.GameDurationMs) <= floor
		},
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			diff := math.Abs(float64(s.GameDurationMs)-s.ReportedDurationMs) / s.ReportedDurationMs
			details := map[string]float64{"differencePercent": diff * 100}
			return "Invalid game duration. Duration mismatch detected.", details, !(diff <= p.MaxDurationMismatch)
		},
	},
	{
		reason: ReasonActionRate,
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			rate := s.perSecond(s.Total)
			msg := fmt.Sprintf("Too many actions per second. Maximum allowed: %g actions/sec", p.MaxActionsPerSecond)
			return msg, map[string]float64{"actionsPerSecond": rate}, rate > p.MaxActionsPerSecond
		},
	},
	{
		reason: ReasonPipeRate,
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			rate := s.perSecond(s.Pipes)
			msg := fmt.Sprintf("Too many pipes passed per second. Maximum allowed: %g pipes/sec", p.MaxPipesPerSecond)
			return msg, map[string]float64{"pipesPerSecond": rate}, rate > p.MaxPipesPerSecond
		},
	},
	{
		reason: ReasonGiftRate,
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			rate := s.perSecond(s.Gifts)
			msg := fmt.Sprintf("Too many gifts collected per second. Maximum allowed: %g gifts/sec", p.MaxGiftsPerSecond)
			return msg, map[string]float64{"giftsPerSecond": rate}, rate > p.MaxGiftsPerSecond
		},
	},
	{
		reason: ReasonPipeSpacing,
		skip: func(p Policy, s Stats) bool {
			return s.Pipes == 0
		},
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			avg := s.DurationSeconds() / float64(s.Pipes)
			msg := fmt.Sprintf("Pipes are being passed too fast. Average time between pipes: %.2fs (minimum: %gs).", avg, p.MinSecondsPerPipe)
			return msg, map[string]float64{"averageTimeBetweenPipes": avg}, avg < p.MinSecondsPerPipe
		},
	},
	{
		reason: ReasonPipeCeiling,
		skip: func(p Policy, s Stats) bool {
			return s.Pipes <= p.PipeCeilingMinPipes
		},
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			ceiling := int64(math.Floor(s.DurationSeconds() / p.MinSecondsPerPipe))
			msg := fmt.Sprintf("Too many pipes for game duration. Got %d pipes in %.2fs, but maximum possible is %d pipes.",
				s.Pipes, s.DurationSeconds(), ceiling)
			details := map[string]float64{"maxPossiblePipes": float64(ceiling), "excess": float64(s.Pipes - ceiling)}
			return msg, details, s.Pipes > ceiling
		},
	},
	{
		reason: ReasonSuspiciousPattern,
		test: func(p Policy, s Stats) (string, map[string]float64, bool) {
			msg := "Suspicious game pattern detected. Too many pipes without any gifts."
			return msg, nil, s.Pipes > p.SuspiciousMinPipes && s.Gifts == 0
		},
	},
}

// Evaluate runs the plausibility checks and returns the first violation,
// or nil when the session may be scored.
func (p Policy) Evaluate(s Stats) *Violation {
	for _, c := range plausibilityChecks {
		if c.skip != nil && c.skip(p, s) {
			continue
		}
		msg, details, failed := c.test(p, s)
		if !failed {
			continue
		}
		if details == nil {
			details = map[string]float64{}
		}
		details["gameDurationSeconds"] = s.DurationSeconds()
		return &Violation{Reason: c.reason, Message: msg, Details: details}
	}
	return nil
}
