package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS players (
    player_id             TEXT PRIMARY KEY,
    score                 INTEGER NOT NULL DEFAULT 0,
    pipes_passed          BIGINT NOT NULL DEFAULT 0,
    gifts_received        BIGINT NOT NULL DEFAULT 0,
    play_time_seconds     DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_session_id       TEXT NOT NULL DEFAULT '',
    last_action_type      TEXT NOT NULL DEFAULT '',
    last_action_timestamp BIGINT NOT NULL DEFAULT 0,
    updated_at            BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS players_score_idx ON players (score DESC);

CREATE TABLE IF NOT EXISTS sessions (
    player_id            TEXT NOT NULL,
    session_id           TEXT NOT NULL,
    uid                  TEXT NOT NULL,
    attempt              INTEGER NOT NULL,
    started_at           BIGINT NOT NULL,
    created_at           BIGINT NOT NULL,
    game_over_at         BIGINT,
    final_score          INTEGER NOT NULL DEFAULT 0,
    final_pipes_passed   BIGINT NOT NULL DEFAULT 0,
    final_gifts_received BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (player_id, session_id)
);

CREATE TABLE IF NOT EXISTS actions (
    id                  TEXT PRIMARY KEY,
    player_id           TEXT NOT NULL,
    session_id          TEXT NOT NULL,
    attempt             INTEGER NOT NULL,
    type                TEXT NOT NULL,
    client_timestamp    BIGINT NOT NULL,
    server_received_at  BIGINT NOT NULL,
    server_processed_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS actions_type_ts_idx
    ON actions (player_id, session_id, attempt, type, client_timestamp);
CREATE INDEX IF NOT EXISTS actions_type_received_idx
    ON actions (player_id, session_id, attempt, type, server_received_at DESC);

CREATE TABLE IF NOT EXISTS cheat_sessions (
    player_id            TEXT NOT NULL,
    session_id           TEXT NOT NULL,
    uid                  TEXT NOT NULL,
    attempt              INTEGER NOT NULL,
    computed_score       INTEGER NOT NULL,
    pipes_count          BIGINT NOT NULL,
    gifts_count          BIGINT NOT NULL,
    total_actions        BIGINT NOT NULL,
    game_duration_ms     BIGINT NOT NULL,
    reported_duration_ms DOUBLE PRECISION NOT NULL,
    rejection_reason     TEXT NOT NULL,
    message              TEXT NOT NULL,
    details              JSONB,
    rejected_at          BIGINT NOT NULL,
    PRIMARY KEY (player_id, session_id, attempt)
);
`

// PostgresStore keeps the same documents as rows, one table per collection.
type PostgresStore struct {
	db *sql.DB
}

func ConnectToPostgreSQL(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	var p models.Player
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, score, pipes_passed, gifts_received, play_time_seconds,
		        last_session_id, last_action_type, last_action_timestamp, updated_at
		   FROM players WHERE player_id = $1`, playerID).
		Scan(&p.PlayerID, &p.Score, &p.PipesPassed, &p.GiftsReceived, &p.PlayTimeSeconds,
			&p.LastSessionID, &p.LastActionType, &p.LastActionTimestamp, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) RaiseBestScore(ctx context.Context, p *models.Player) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO players (player_id, score, pipes_passed, gifts_received, play_time_seconds,
		                      last_session_id, last_action_type, last_action_timestamp, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (player_id) DO UPDATE SET
		     score = EXCLUDED.score,
		     pipes_passed = EXCLUDED.pipes_passed,
		     gifts_received = EXCLUDED.gifts_received,
		     play_time_seconds = EXCLUDED.play_time_seconds,
		     last_session_id = EXCLUDED.last_session_id,
		     last_action_type = EXCLUDED.last_action_type,
		     last_action_timestamp = EXCLUDED.last_action_timestamp,
		     updated_at = EXCLUDED.updated_at
		 WHERE players.score < EXCLUDED.score`,
		p.PlayerID, p.Score, p.PipesPassed, p.GiftsReceived, p.PlayTimeSeconds,
		p.LastSessionID, p.LastActionType, p.LastActionTimestamp, p.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) TopPlayers(ctx context.Context, limit, maxScore int) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, score, pipes_passed, gifts_received, play_time_seconds,
		        last_session_id, last_action_type, last_action_timestamp, updated_at
		   FROM players WHERE score > 0 AND score <= $2
		  ORDER BY score DESC, player_id LIMIT $1`, limit, maxScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.PlayerID, &p.Score, &p.PipesPassed, &p.GiftsReceived, &p.PlayTimeSeconds,
			&p.LastSessionID, &p.LastActionType, &p.LastActionTimestamp, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *PostgresStore) GetSession(ctx context.Context, playerID, sessionID string) (*models.Session, error) {
	var sess models.Session
	var gameOverAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, session_id, uid, attempt, started_at, created_at, game_over_at,
		        final_score, final_pipes_passed, final_gifts_received
		   FROM sessions WHERE player_id = $1 AND session_id = $2`, playerID, sessionID).
		Scan(&sess.PlayerID, &sess.SessionID, &sess.UID, &sess.Attempt, &sess.StartedAt, &sess.CreatedAt,
			&gameOverAt, &sess.FinalScore, &sess.FinalPipesPassed, &sess.FinalGiftsReceived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if gameOverAt.Valid {
		at := gameOverAt.Int64
		sess.GameOverAt = &at
	}
	return &sess, nil
}

func (s *PostgresStore) PutSession(ctx context.Context, sess *models.Session) error {
	var gameOverAt sql.NullInt64
	if sess.GameOverAt != nil {
		gameOverAt = sql.NullInt64{Int64: *sess.GameOverAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (player_id, session_id, uid, attempt, started_at, created_at, game_over_at,
		                       final_score, final_pipes_passed, final_gifts_received)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (player_id, session_id) DO UPDATE SET
		     uid = EXCLUDED.uid,
		     attempt = EXCLUDED.attempt,
		     started_at = EXCLUDED.started_at,
		     created_at = EXCLUDED.created_at,
		     game_over_at = EXCLUDED.game_over_at,
		     final_score = EXCLUDED.final_score,
		     final_pipes_passed = EXCLUDED.final_pipes_passed,
		     final_gifts_received = EXCLUDED.final_gifts_received`,
		sess.PlayerID, sess.SessionID, sess.UID, sess.Attempt, sess.StartedAt, sess.CreatedAt, gameOverAt,
		sess.FinalScore, sess.FinalPipesPassed, sess.FinalGiftsReceived)
	return err
}

func (s *PostgresStore) FinalizeSession(ctx context.Context, playerID, sessionID string, attempt int, res models.SessionResult) error {
	out, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		    SET game_over_at = $4, final_score = $5, final_pipes_passed = $6, final_gifts_received = $7
		  WHERE player_id = $1 AND session_id = $2 AND attempt = $3 AND game_over_at IS NULL`,
		playerID, sessionID, attempt, res.GameOverAt, res.FinalScore, res.FinalPipesPassed, res.FinalGiftsReceived)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE player_id = $1 AND session_id = $2)`,
		playerID, sessionID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrSessionEnded
}

func (s *PostgresStore) AppendAction(ctx context.Context, a *models.Action) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (id, player_id, session_id, attempt, type, client_timestamp,
		                      server_received_at, server_processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.PlayerID, a.SessionID, a.Attempt, string(a.Type), a.Timestamp,
		a.ServerReceivedAt, a.ServerProcessedAt)
	return err
}

// actionWhere builds the WHERE clause shared by the action queries.
func actionWhere(q ActionQuery) (string, []interface{}) {
	where := "player_id = $1 AND session_id = $2 AND attempt = $3"
	args := []interface{}{q.PlayerID, q.SessionID, q.Attempt}
	if q.Type != "" {
		args = append(args, string(q.Type))
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if q.From != nil {
		args = append(args, *q.From)
		where += fmt.Sprintf(" AND client_timestamp >= $%d", len(args))
	}
	if q.To != nil {
		args = append(args, *q.To)
		where += fmt.Sprintf(" AND client_timestamp <= $%d", len(args))
	}
	return where, args
}

func (s *PostgresStore) CountActions(ctx context.Context, q ActionQuery) (int64, error) {
	where, args := actionWhere(q)
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM actions WHERE "+where, args...).Scan(&n)
	return n, err
}

func (s *PostgresStore) LatestAction(ctx context.Context, q ActionQuery) (*models.Action, error) {
	where, args := actionWhere(q)
	var a models.Action
	var actionType string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, player_id, session_id, attempt, type, client_timestamp, server_received_at, server_processed_at
		   FROM actions WHERE `+where+` ORDER BY server_received_at DESC LIMIT 1`, args...).
		Scan(&a.ID, &a.PlayerID, &a.SessionID, &a.Attempt, &actionType, &a.Timestamp,
			&a.ServerReceivedAt, &a.ServerProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Type = models.ActionType(actionType)
	return &a, nil
}

func (s *PostgresStore) PutCheatRecord(ctx context.Context, r *models.CheatRecord) error {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cheat_sessions (player_id, session_id, uid, attempt, computed_score, pipes_count,
		                             gifts_count, total_actions, game_duration_ms, reported_duration_ms,
		                             rejection_reason, message, details, rejected_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (player_id, session_id, attempt) DO UPDATE SET
		     uid = EXCLUDED.uid,
		     computed_score = EXCLUDED.computed_score,
		     pipes_count = EXCLUDED.pipes_count,
		     gifts_count = EXCLUDED.gifts_count,
		     total_actions = EXCLUDED.total_actions,
		     game_duration_ms = EXCLUDED.game_duration_ms,
		     reported_duration_ms = EXCLUDED.reported_duration_ms,
		     rejection_reason = EXCLUDED.rejection_reason,
		     message = EXCLUDED.message,
		     details = EXCLUDED.details,
		     rejected_at = EXCLUDED.rejected_at`,
		r.PlayerID, r.SessionID, r.UID, r.Attempt, r.ComputedScore, r.PipesCount,
		r.GiftsCount, r.TotalActions, r.GameDurationMs, r.ReportedDurationMs,
		r.RejectionReason, r.Message, string(details), r.RejectedAt)
	return err
}

func (s *PostgresStore) ListCheatRecords(ctx context.Context, playerID string) ([]models.CheatRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, session_id, uid, attempt, computed_score, pipes_count, gifts_count,
		        total_actions, game_duration_ms, reported_duration_ms, rejection_reason, message,
		        details, rejected_at
		   FROM cheat_sessions WHERE player_id = $1 ORDER BY rejected_at DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.CheatRecord{}
	for rows.Next() {
		var r models.CheatRecord
		var details []byte
		if err := rows.Scan(&r.PlayerID, &r.SessionID, &r.UID, &r.Attempt, &r.ComputedScore,
			&r.PipesCount, &r.GiftsCount, &r.TotalActions, &r.GameDurationMs, &r.ReportedDurationMs,
			&r.RejectionReason, &r.Message, &details, &r.RejectedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &r.Details); err != nil {
				log.Printf("Warning: bad cheat record details for %s/%s: %v", r.PlayerID, r.SessionID, err)
			}
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}
