// Package anticheat validates gameplay actions and derives scores from the
// logged actions of a session, never from client-reported totals.
package anticheat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/repository"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
)

const (
	DefaultStoreTimeout    = 5 * time.Second
	DefaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
	// Extra rows fetched so malformed IDs do not shorten the leaderboard.
	leaderboardSlack       = 10
)

type Service struct {
	store   repository.Store
	policy  Policy
	timeout time.Duration
	clock   func() time.Time
	auditor *Auditor

	mu        sync.RWMutex
	listeners []func(playerID string, score int)
}

type Option func(*Service)

// WithClock replaces time.Now as the server clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithStoreTimeout bounds every store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(store repository.Store, policy Policy, opts ...Option) *Service {
	s := &Service{
		store:   store,
		policy:  policy,
		timeout: DefaultStoreTimeout,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.auditor = NewAuditor(store, s.timeout)
	return s
}

// OnScoreImproved registers fn to run after a player's best score is raised.
func (s *Service) OnScoreImproved(fn func(playerID string, score int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notifyScoreImproved(playerID string, score int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(playerID, score)
	}
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func (s *Service) countActions(ctx context.Context, q repository.ActionQuery) (int64, error) {
	return withTimeout(ctx, s.timeout, func(ctx context.Context) (int64, error) {
		return s.store.CountActions(ctx, q)
	})
}

// SubmitAction is the single RPC of the service: validate the call, move the
// session through its lifecycle and, on game_over, score it.
func (s *Service) SubmitAction(ctx context.Context, uid string, req models.SubmitActionRequest) (*models.Result, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, responses.UnauthenticatedError{Msg: "User must be authenticated"}
	}

	playerID, err := ParsePlayerID(req.PlayerID)
	if err != nil {
		return nil, err
	}
	sessionID, err := ParseSessionID(req.SessionID)
	if err != nil {
		return nil, err
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		return nil, err
	}

	sub := &submission{
		uid:       uid,
		playerID:  playerID,
		sessionID: sessionID,
		action:    action,
		now:       s.clock().UnixMilli(),
	}
	log.Printf("[anticheat] submitAction player=%s session=%s type=%s uid=%s", playerID, sessionID, action.Type(), uid)

	if action.Type() == models.ActionGameStart {
		return s.startSession(ctx, sub)
	}
	return s.recordAction(ctx, sub)
}

func (s *Service) loadSession(ctx context.Context, sub *submission) (*models.Session, error) {
	sess, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (*models.Session, error) {
		return s.store.GetSession(ctx, sub.playerID, sub.sessionID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("load session", err)
	}
	return sess, nil
}

func (s *Service) appendAction(ctx context.Context, sub *submission) error {
	a := &models.Action{
		ID:                uuid.NewString(),
		PlayerID:          sub.playerID,
		SessionID:         sub.sessionID,
		Attempt:           sub.session.Attempt,
		Type:              sub.action.Type(),
		Timestamp:         sub.action.ClientTimestamp(),
		ServerReceivedAt:  sub.now,
		ServerProcessedAt: s.clock().UnixMilli(),
	}
	_, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.AppendAction(ctx, a)
	})
	if err != nil {
		return internalError("append action", err)
	}
	return nil
}

// startSession creates the session, or reopens one whose previous attempt
// has ended. An open session cannot be started again by anyone.
func (s *Service) startSession(ctx context.Context, sub *submission) (*models.Result, error) {
	prev, err := s.loadSession(ctx, sub)
	if err != nil {
		return nil, err
	}

	attempt := 1
	if prev != nil {
		if !prev.Ended() {
			log.Printf("[anticheat] Session %s/%s already exists and not ended", sub.playerID, sub.sessionID)
			return nil, responses.InvalidArgumentError{
				Msg: "Session already exists. Please end the current game before starting a new one.",
			}
		}
		attempt = prev.Attempt + 1
	}

	if err := s.checkFutureTimestamp(ctx, sub); err != nil {
		return nil, err
	}

	sub.session = &models.Session{
		PlayerID:  sub.playerID,
		SessionID: sub.sessionID,
		UID:       sub.uid,
		Attempt:   attempt,
		StartedAt: sub.action.ClientTimestamp(),
		CreatedAt: sub.now,
	}
	_, err = withTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.PutSession(ctx, sub.session)
	})
	if err != nil {
		return nil, internalError("create session", err)
	}
	if err := s.appendAction(ctx, sub); err != nil {
		return nil, err
	}

	log.Printf("[anticheat] Game session %s/%s started (attempt %d)", sub.playerID, sub.sessionID, attempt)
	return &models.Result{Success: true, Message: "Game session started"}, nil
}

func (s *Service) recordAction(ctx context.Context, sub *submission) (*models.Result, error) {
	sess, err := s.loadSession(ctx, sub)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, responses.InvalidArgumentError{Msg: "Session does not exist. Please start a game first."}
	}
	if sess.UID != sub.uid {
		log.Printf("[anticheat] Session %s/%s ownership mismatch", sub.playerID, sub.sessionID)
		return nil, responses.PermissionDeniedError{Msg: "Session does not belong to you"}
	}
	if sess.Ended() {
		return nil, responses.InvalidArgumentError{Msg: "Session has already ended. Please start a new game."}
	}
	sub.session = sess

	if err := runGuards(ctx, sub, s.actionGuards()); err != nil {
		return nil, err
	}
	if err := s.appendAction(ctx, sub); err != nil {
		return nil, err
	}

	gameOver, ok := sub.action.(GameOver)
	if !ok {
		return &models.Result{Success: true, Message: "Action recorded"}, nil
	}
	return s.finishGame(ctx, sub, gameOver)
}

// collectStats counts the session's actions with aggregate queries.
func (s *Service) collectStats(ctx context.Context, sub *submission, gameOver GameOver) (Stats, error) {
	stats := Stats{
		GameDurationMs:     gameOver.Timestamp - sub.session.StartedAt,
		ReportedDurationMs: gameOver.PlayTimeSeconds * 1000,
	}

	g, gctx := errgroup.WithContext(ctx)
	count := func(t models.ActionType, dst *int64) {
		g.Go(func() error {
			n, err := s.countActions(gctx, sub.query(t))
			*dst = n
			return err
		})
	}
	count(models.ActionPipePassed, &stats.Pipes)
	count(models.ActionGiftCollected, &stats.Gifts)
	count("", &stats.Total)
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Service) finishGame(ctx context.Context, sub *submission, gameOver GameOver) (*models.Result, error) {
	stats, err := s.collectStats(ctx, sub, gameOver)
	if err != nil {
		return nil, internalError("count actions", err)
	}
	score := s.policy.Score(stats.Pipes, stats.Gifts)
	log.Printf("[anticheat] game_over %s/%s: pipes=%d gifts=%d total=%d duration=%dms reported=%.0fms",
		sub.playerID, sub.sessionID, stats.Pipes, stats.Gifts, stats.Total, stats.GameDurationMs, stats.ReportedDurationMs)

	violation := s.policy.Evaluate(stats)

	var previous int
	if violation == nil {
		previous, err = s.bestScore(ctx, sub.playerID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.finalizeSession(ctx, sub, stats, score); err != nil {
		return nil, err
	}

	if violation != nil {
		log.Printf("[anticheat] Session %s/%s rejected: %s", sub.playerID, sub.sessionID, violation.Reason)
		s.auditor.Quarantine(ctx, newCheatRecord(sub, stats, score, violation))
		return nil, responses.InvalidArgumentError{Msg: violation.Message}
	}

	pipes, gifts := stats.Pipes, stats.Gifts
	if score <= previous {
		return notImproved(previous, pipes, gifts), nil
	}

	player := &models.Player{
		PlayerID:            sub.playerID,
		Score:               score,
		PipesPassed:         pipes,
		GiftsReceived:       gifts,
		PlayTimeSeconds:     gameOver.PlayTimeSeconds,
		LastSessionID:       sub.sessionID,
		LastActionType:      string(models.ActionGameOver),
		LastActionTimestamp: gameOver.Timestamp,
		UpdatedAt:           sub.now,
	}
	raised, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (bool, error) {
		return s.store.RaiseBestScore(ctx, player)
	})
	if err != nil {
		return nil, internalError("write player score", err)
	}
	if !raised {
		// A concurrent session stored a score at least as high.
		current, err := s.bestScore(ctx, sub.playerID)
		if err != nil {
			return nil, err
		}
		return notImproved(current, pipes, gifts), nil
	}

	log.Printf("[anticheat] Player %s best score %d -> %d", sub.playerID, previous, score)
	s.notifyScoreImproved(sub.playerID, score)
	return &models.Result{
		Success:       true,
		Score:         &score,
		PreviousScore: &previous,
		PipesCount:    &pipes,
		GiftsCount:    &gifts,
		Message:       "Score updated successfully",
	}, nil
}

func notImproved(best int, pipes, gifts int64) *models.Result {
	return &models.Result{
		Success:    true,
		Score:      &best,
		PipesCount: &pipes,
		GiftsCount: &gifts,
		Message:    "Score not higher than current high score",
	}
}

// finalizeSession ends the attempt whether or not it scores.
func (s *Service) finalizeSession(ctx context.Context, sub *submission, stats Stats, score int) error {
	res := models.SessionResult{
		GameOverAt:         sub.now,
		FinalScore:         score,
		FinalPipesPassed:   stats.Pipes,
		FinalGiftsReceived: stats.Gifts,
	}
	_, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.FinalizeSession(ctx, sub.playerID, sub.sessionID, sub.session.Attempt, res)
	})
	if errors.Is(err, repository.ErrSessionEnded) {
		return responses.InvalidArgumentError{Msg: "Session has already ended. Please start a new game."}
	}
	if err != nil {
		return internalError("finalize session", err)
	}
	return nil
}

func (s *Service) bestScore(ctx context.Context, playerID string) (int, error) {
	p, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (*models.Player, error) {
		return s.store.GetPlayer(ctx, playerID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, internalError("load player", err)
	}
	return p.Score, nil
}
