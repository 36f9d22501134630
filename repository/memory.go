package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
)

// MemStore keeps every collection in process memory. It backs tests and
// STORE_DRIVER=memory.
type MemStore struct {
	mu       sync.RWMutex
	players  map[string]models.Player
	sessions map[string]models.Session
	actions  map[string][]models.Action
	cheats   map[string]map[string]models.CheatRecord

	// Fail, when set, is returned by every call whose name is a key.
	Fail map[string]error
}

func NewMemStore() *MemStore {
	return &MemStore{
		players:  make(map[string]models.Player),
		sessions: make(map[string]models.Session),
		actions:  make(map[string][]models.Action),
		cheats:   make(map[string]map[string]models.CheatRecord),
	}
}

func sessionKey(playerID, sessionID string) string {
	return playerID + "/" + sessionID
}

// cheatKey identifies one rejected attempt of a session.
func cheatKey(playerID, sessionID string, attempt int) string {
	return sessionKey(playerID, sessionID) + "/" + strconv.Itoa(attempt)
}

func (m *MemStore) failure(op string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail[op]
}

func (m *MemStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	if err := m.failure("GetPlayer"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemStore) RaiseBestScore(ctx context.Context, p *models.Player) (bool, error) {
	if err := m.failure("RaiseBestScore"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.players[p.PlayerID]; ok && cur.Score >= p.Score {
		return false, nil
	}
	m.players[p.PlayerID] = *p
	return true, nil
}

func (m *MemStore) TopPlayers(ctx context.Context, limit, maxScore int) ([]models.Player, error) {
	if err := m.failure("TopPlayers"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.Player, 0, len(m.players))
	for _, p := range m.players {
		if p.Score > 0 && p.Score <= maxScore {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].PlayerID < list[j].PlayerID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MemStore) GetSession(ctx context.Context, playerID, sessionID string) (*models.Session, error) {
	if err := m.failure("GetSession"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionKey(playerID, sessionID)]
	if !ok {
		return nil, ErrNotFound
	}
	if s.GameOverAt != nil {
		at := *s.GameOverAt
		s.GameOverAt = &at
	}
	return &s, nil
}

func (m *MemStore) PutSession(ctx context.Context, s *models.Session) error {
	if err := m.failure("PutSession"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionKey(s.PlayerID, s.SessionID)] = *s
	return nil
}

func (m *MemStore) FinalizeSession(ctx context.Context, playerID, sessionID string, attempt int, res models.SessionResult) error {
	if err := m.failure("FinalizeSession"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(playerID, sessionID)
	s, ok := m.sessions[key]
	if !ok {
		return ErrNotFound
	}
	if s.GameOverAt != nil || s.Attempt != attempt {
		return ErrSessionEnded
	}
	at := res.GameOverAt
	s.GameOverAt = &at
	s.FinalScore = res.FinalScore
	s.FinalPipesPassed = res.FinalPipesPassed
	s.FinalGiftsReceived = res.FinalGiftsReceived
	m.sessions[key] = s
	return nil
}

func (m *MemStore) AppendAction(ctx context.Context, a *models.Action) error {
	if err := m.failure("AppendAction"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(a.PlayerID, a.SessionID)
	m.actions[key] = append(m.actions[key], *a)
	return nil
}

func (q ActionQuery) matches(a models.Action) bool {
	if a.Attempt != q.Attempt {
		return false
	}
	if q.Type != "" && a.Type != q.Type {
		return false
	}
	if q.From != nil && a.Timestamp < *q.From {
		return false
	}
	if q.To != nil && a.Timestamp > *q.To {
		return false
	}
	return true
}

func (m *MemStore) CountActions(ctx context.Context, q ActionQuery) (int64, error) {
	if err := m.failure("CountActions"); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, a := range m.actions[sessionKey(q.PlayerID, q.SessionID)] {
		if q.matches(a) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) LatestAction(ctx context.Context, q ActionQuery) (*models.Action, error) {
	if err := m.failure("LatestAction"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.Action
	for _, a := range m.actions[sessionKey(q.PlayerID, q.SessionID)] {
		if !q.matches(a) {
			continue
		}
		if latest == nil || a.ServerReceivedAt >= latest.ServerReceivedAt {
			found := a
			latest = &found
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *MemStore) PutCheatRecord(ctx context.Context, r *models.CheatRecord) error {
	if err := m.failure("PutCheatRecord"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cheats[r.PlayerID] == nil {
		m.cheats[r.PlayerID] = make(map[string]models.CheatRecord)
	}
	m.cheats[r.PlayerID][cheatKey(r.PlayerID, r.SessionID, r.Attempt)] = *r
	return nil
}

func (m *MemStore) ListCheatRecords(ctx context.Context, playerID string) ([]models.CheatRecord, error) {
	if err := m.failure("ListCheatRecords"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.CheatRecord, 0, len(m.cheats[playerID]))
	for _, r := range m.cheats[playerID] {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].RejectedAt > list[j].RejectedAt
	})
	return list, nil
}

func (m *MemStore) Close(ctx context.Context) error {
	return nil
}
