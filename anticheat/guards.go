package anticheat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/repository"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
)

// submission is one validated call flowing through the state machine.
type submission struct {
	uid       string
	playerID  string
	sessionID string
	action    Action
	session   *models.Session
	now       int64
}

func (sub *submission) query(t models.ActionType) repository.ActionQuery {
	return repository.ActionQuery{
		PlayerID:  sub.playerID,
		SessionID: sub.sessionID,
		Attempt:   sub.session.Attempt,
		Type:      t,
	}
}

type guardFunc func(ctx context.Context, sub *submission) error

// failClosed turns any infrastructure failure of g into an Internal error.
func failClosed(name string, g guardFunc) guardFunc {
	return func(ctx context.Context, sub *submission) error {
		err := g(ctx, sub)
		if err == nil || responses.IsRejection(err) {
			return err
		}
		return internalError(name, err)
	}
}

// bestEffort lets the action through when g itself cannot run.
// Rejections from g are still returned.
func bestEffort(name string, g guardFunc) guardFunc {
	return func(ctx context.Context, sub *submission) error {
		err := g(ctx, sub)
		if err == nil || responses.IsRejection(err) {
			return err
		}
		log.Printf("[anticheat] Warning: %s check skipped for %s/%s: %v", name, sub.playerID, sub.sessionID, err)
		return nil
	}
}

func runGuards(ctx context.Context, sub *submission, guards []guardFunc) error {
	for _, g := range guards {
		if err := g(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

func internalError(op string, err error) error {
	log.Printf("[anticheat] %s failed: %v", op, err)
	msg := "An error occurred while processing your request"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "The score store did not respond in time"
	}
	return responses.InternalError{Msg: msg, Cause: fmt.Errorf("%s: %w", op, err)}
}

// guards for every non-start action, in evaluation order.
func (s *Service) actionGuards() []guardFunc {
	return []guardFunc{
		failClosed("future timestamp", s.checkFutureTimestamp),
		failClosed("start precedence", s.checkStarted),
		failClosed("post game over", s.checkNotOver),
		bestEffort("duplicate", s.checkDuplicate),
		failClosed("session volume", s.checkVolume),
		bestEffort("micro rate", s.checkMicroRate),
	}
}

func (s *Service) checkFutureTimestamp(ctx context.Context, sub *submission) error {
	limit := sub.now + s.policy.MaxFutureSkew.Milliseconds()
	if sub.action.ClientTimestamp() > limit {
		log.Printf("[anticheat] Timestamp in the future: client=%d server=%d", sub.action.ClientTimestamp(), sub.now)
		return responses.InvalidArgumentError{Msg: "Action timestamp cannot be in the future"}
	}
	return nil
}

func (s *Service) checkStarted(ctx context.Context, sub *submission) error {
	n, err := s.countActions(ctx, sub.query(models.ActionGameStart))
	if err != nil {
		return err
	}
	if n == 0 {
		return responses.InvalidArgumentError{Msg: "Game must be started before submitting other actions"}
	}
	return nil
}

func (s *Service) checkNotOver(ctx context.Context, sub *submission) error {
	if sub.action.Type() == models.ActionGameOver {
		return nil
	}
	n, err := s.countActions(ctx, sub.query(models.ActionGameOver))
	if err != nil {
		return err
	}
	if n > 0 {
		return responses.InvalidArgumentError{Msg: "Game has already ended. Cannot submit more actions."}
	}
	return nil
}

func (s *Service) checkDuplicate(ctx context.Context, sub *submission) error {
	window := s.policy.DuplicateWindow.Milliseconds()
	from := sub.action.ClientTimestamp() - window
	to := sub.action.ClientTimestamp() + window

	q := sub.query(sub.action.Type())
	q.From, q.To = &from, &to
	n, err := s.countActions(ctx, q)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[anticheat] Duplicate %s at %d for %s/%s", sub.action.Type(), sub.action.ClientTimestamp(), sub.playerID, sub.sessionID)
		return responses.InvalidArgumentError{Msg: "Duplicate action detected. This action was already submitted."}
	}
	return nil
}

func (s *Service) checkVolume(ctx context.Context, sub *submission) error {
	n, err := s.countActions(ctx, sub.query(""))
	if err != nil {
		return err
	}
	if n < s.policy.MaxActionsPerSession {
		return nil
	}
	if sub.action.Type() == models.ActionGameOver {
		log.Printf("[anticheat] Warning: game_over with %d actions (max %d) for %s/%s, allowing it to finish",
			n, s.policy.MaxActionsPerSession, sub.playerID, sub.sessionID)
		return nil
	}
	return responses.ResourceExhaustedError{
		Msg: fmt.Sprintf("Too many actions in this session. Maximum allowed: %d", s.policy.MaxActionsPerSession),
	}
}

// checkMicroRate compares server receipt times so a forged client
// timestamp cannot pass it.
func (s *Service) checkMicroRate(ctx context.Context, sub *submission) error {
	t := sub.action.Type()
	if t != models.ActionPipePassed && t != models.ActionGiftCollected {
		return nil
	}

	last, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (*models.Action, error) {
		return s.store.LatestAction(ctx, sub.query(t))
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	lastServerTime := last.ServerReceivedAt
	if lastServerTime == 0 {
		lastServerTime = last.Timestamp
	}
	minInterval := s.policy.MinActionInterval.Milliseconds()
	if sub.now-lastServerTime < minInterval {
		log.Printf("[anticheat] %s too fast for %s/%s: %dms since last", t, sub.playerID, sub.sessionID, sub.now-lastServerTime)
		return responses.InvalidArgumentError{
			Msg: fmt.Sprintf("Actions are too fast. Minimum time between actions: %dms", minInterval),
		}
	}
	return nil
}
