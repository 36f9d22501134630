package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
)

func TestRaiseBestScoreIsMonotonic(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	for _, tt := range []struct {
		score  int
		raised bool
	}{
		{5, true},
		{3, false},
		{5, false},
		{8, true},
	} {
		raised, err := m.RaiseBestScore(ctx, &models.Player{PlayerID: "1234", Score: tt.score})
		if err != nil {
			t.Fatal(err)
		}
		if raised != tt.raised {
			t.Errorf("RaiseBestScore(%d) = %v, want %v", tt.score, raised, tt.raised)
		}
	}

	p, err := m.GetPlayer(ctx, "1234")
	if err != nil || p.Score != 8 {
		t.Fatalf("GetPlayer = %+v, %v", p, err)
	}
}

func TestRaiseBestScoreConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	var wg sync.WaitGroup
	for score := 1; score <= 50; score++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			m.RaiseBestScore(ctx, &models.Player{PlayerID: "1234", Score: score})
		}(score)
	}
	wg.Wait()

	p, _ := m.GetPlayer(ctx, "1234")
	if p.Score != 50 {
		t.Fatalf("score = %d, want 50", p.Score)
	}
}

func TestFinalizeSessionOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	if err := m.FinalizeSession(ctx, "1234", "s1", 1, models.SessionResult{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session: %v", err)
	}

	m.PutSession(ctx, &models.Session{PlayerID: "1234", SessionID: "s1", Attempt: 1})
	if err := m.FinalizeSession(ctx, "1234", "s1", 1, models.SessionResult{GameOverAt: 10, FinalScore: 3}); err != nil {
		t.Fatal(err)
	}
	if err := m.FinalizeSession(ctx, "1234", "s1", 1, models.SessionResult{GameOverAt: 11}); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("second finalize: %v", err)
	}

	s, _ := m.GetSession(ctx, "1234", "s1")
	if !s.Ended() || *s.GameOverAt != 10 || s.FinalScore != 3 {
		t.Fatalf("session = %+v", s)
	}

	// A stale attempt cannot finalize a restarted session.
	m.PutSession(ctx, &models.Session{PlayerID: "1234", SessionID: "s1", Attempt: 2})
	if err := m.FinalizeSession(ctx, "1234", "s1", 1, models.SessionResult{}); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("stale attempt: %v", err)
	}
}

func TestActionQueries(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	add := func(attempt int, typ models.ActionType, ts, received int64) {
		m.AppendAction(ctx, &models.Action{
			PlayerID: "1234", SessionID: "s1", Attempt: attempt,
			Type: typ, Timestamp: ts, ServerReceivedAt: received,
		})
	}
	add(1, models.ActionGameStart, 1000, 1000)
	add(1, models.ActionPipePassed, 2000, 2005)
	add(1, models.ActionPipePassed, 3000, 3010)
	add(2, models.ActionPipePassed, 4000, 4000)

	count := func(q ActionQuery) int64 {
		t.Helper()
		n, err := m.CountActions(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		return n
	}

	q := ActionQuery{PlayerID: "1234", SessionID: "s1", Attempt: 1}
	if n := count(q); n != 3 {
		t.Errorf("all attempt 1 = %d, want 3", n)
	}
	q.Type = models.ActionPipePassed
	if n := count(q); n != 2 {
		t.Errorf("pipes attempt 1 = %d, want 2", n)
	}
	from, to := int64(1900), int64(2100)
	q.From, q.To = &from, &to
	if n := count(q); n != 1 {
		t.Errorf("pipes in window = %d, want 1", n)
	}

	latest, err := m.LatestAction(ctx, ActionQuery{PlayerID: "1234", SessionID: "s1", Attempt: 1, Type: models.ActionPipePassed})
	if err != nil || latest.ServerReceivedAt != 3010 {
		t.Fatalf("LatestAction = %+v, %v", latest, err)
	}
	if _, err := m.LatestAction(ctx, ActionQuery{PlayerID: "1234", SessionID: "s1", Attempt: 1, Type: models.ActionGameOver}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LatestAction with no match: %v", err)
	}
}

func TestCheatRecordsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	m.PutCheatRecord(ctx, &models.CheatRecord{PlayerID: "1234", SessionID: "a", RejectedAt: 1})
	m.PutCheatRecord(ctx, &models.CheatRecord{PlayerID: "1234", SessionID: "b", RejectedAt: 2})
	m.PutCheatRecord(ctx, &models.CheatRecord{PlayerID: "5678", SessionID: "c", RejectedAt: 3})

	list, err := m.ListCheatRecords(ctx, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].SessionID != "b" {
		t.Fatalf("list = %+v", list)
	}
}

func TestCheatRecordsKeepEveryAttempt(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	m.PutCheatRecord(ctx, &models.CheatRecord{PlayerID: "1234", SessionID: "s1", Attempt: 1, RejectionReason: "duration_mismatch", RejectedAt: 1})
	m.PutCheatRecord(ctx, &models.CheatRecord{PlayerID: "1234", SessionID: "s1", Attempt: 2, RejectionReason: "suspicious_pattern", RejectedAt: 2})

	list, err := m.ListCheatRecords(ctx, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Attempt != 2 || list[1].RejectionReason != "duration_mismatch" {
		t.Fatalf("list = %+v", list)
	}
}

func TestTopPlayersScoreRange(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	for id, score := range map[string]int{"1111": 0, "2222": 50, "3333": 101, "4444": 100} {
		m.RaiseBestScore(ctx, &models.Player{PlayerID: id, Score: score})
	}

	list, err := m.TopPlayers(ctx, 10, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].PlayerID != "4444" || list[1].PlayerID != "2222" {
		t.Fatalf("list = %+v", list)
	}
}

func TestFailInjection(t *testing.T) {
	m := NewMemStore()
	boom := errors.New("boom")
	m.Fail = map[string]error{"CountActions": boom}

	if _, err := m.CountActions(context.Background(), ActionQuery{}); !errors.Is(err, boom) {
		t.Fatalf("CountActions error = %v", err)
	}
	if _, err := m.TopPlayers(context.Background(), 10, 10000); err != nil {
		t.Fatalf("TopPlayers should not fail: %v", err)
	}
}
