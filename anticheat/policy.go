package anticheat

import "time"

// DefaultMaxScore caps a single session's score.
const DefaultMaxScore = 10000

// Policy holds every tunable threshold of the guards and plausibility
// checks. The env tags are read by config with the POLICY_ prefix.
type Policy struct {
	MaxFutureSkew        time.Duration `env:"MAX_FUTURE_SKEW" envDefault:"5s"`
	DuplicateWindow      time.Duration `env:"DUPLICATE_WINDOW" envDefault:"100ms"`
	MaxActionsPerSession int64         `env:"MAX_ACTIONS_PER_SESSION" envDefault:"5000"`
	MinActionInterval    time.Duration `env:"MIN_ACTION_INTERVAL" envDefault:"50ms"`

	DurationCheckMin    time.Duration `env:"DURATION_CHECK_MIN" envDefault:"5s"`
	MaxDurationMismatch float64       `env:"MAX_DURATION_MISMATCH" envDefault:"0.5"`
	MaxActionsPerSecond float64       `env:"MAX_ACTIONS_PER_SECOND" envDefault:"3"`
	MaxPipesPerSecond   float64       `env:"MAX_PIPES_PER_SECOND" envDefault:"0.8"`
	MaxGiftsPerSecond   float64       `env:"MAX_GIFTS_PER_SECOND" envDefault:"0.5"`
	MinSecondsPerPipe   float64       `env:"MIN_SECONDS_PER_PIPE" envDefault:"0.8"`
	PipeCeilingMinPipes int64         `env:"PIPE_CEILING_MIN_PIPES" envDefault:"10"`
	SuspiciousMinPipes  int64         `env:"SUSPICIOUS_MIN_PIPES" envDefault:"20"`

	MaxScore int `env:"MAX_SCORE" envDefault:"10000"`
}

// DefaultPolicy mirrors the envDefault tags.
func DefaultPolicy() Policy {
	return Policy{
		MaxFutureSkew:        5 * time.Second,
		DuplicateWindow:      100 * time.Millisecond,
		MaxActionsPerSession: 5000,
		MinActionInterval:    50 * time.Millisecond,

		DurationCheckMin:    5 * time.Second,
		MaxDurationMismatch: 0.5,
		MaxActionsPerSecond: 3,
		MaxPipesPerSecond:   0.8,
		MaxGiftsPerSecond:   0.5,
		MinSecondsPerPipe:   0.8,
		PipeCeilingMinPipes: 10,
		SuspiciousMinPipes:  20,

		MaxScore: DefaultMaxScore,
	}
}

// Score is min(pipes + gifts, MaxScore) with negative counts treated as 0.
func (p Policy) Score(pipes, gifts int64) int {
	total := max(pipes, 0) + max(gifts, 0)
	return int(min(total, int64(p.scoreCap())))
}

func (p Policy) scoreCap() int {
	if p.MaxScore <= 0 {
		return DefaultMaxScore
	}
	return p.MaxScore
}
