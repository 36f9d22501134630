package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
)

const (
	playersCollection  = "players"
	sessionsCollection = "sessions"
	actionsCollection  = "actions"
	cheatsCollection   = "cheat_sessions"
)

// MongoStore lays the documents out as players/{playerId},
// sessions/{playerId/sessionId}, actions/{autoId} and
// cheat_sessions/{playerId/sessionId/attempt}.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongoDB(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		// The duplicate and micro-rate guards tolerate a missing index.
		log.Printf("Warning: could not create mongo indexes: %v", err)
	}

	log.Println("Successfully connected to MongoDB")
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(actionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "sessionId", Value: 1}, {Key: "attempt", Value: 1}, {Key: "type", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "sessionId", Value: 1}, {Key: "attempt", Value: 1}, {Key: "type", Value: 1}, {Key: "serverReceivedAt", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(playersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "score", Value: -1}},
	})
	return err
}

func (s *MongoStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	var p models.Player
	err := s.db.Collection(playersCollection).FindOne(ctx, bson.M{"_id": playerID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) RaiseBestScore(ctx context.Context, p *models.Player) (bool, error) {
	filter := bson.M{"_id": p.PlayerID, "score": bson.M{"$lt": p.Score}}
	update := bson.M{"$set": bson.M{
		"score":               p.Score,
		"pipesPassed":         p.PipesPassed,
		"giftsReceived":       p.GiftsReceived,
		"playTimeSeconds":     p.PlayTimeSeconds,
		"lastSessionId":       p.LastSessionID,
		"lastActionType":      p.LastActionType,
		"lastActionTimestamp": p.LastActionTimestamp,
		"updatedAt":           p.UpdatedAt,
	}}

	res, err := s.db.Collection(playersCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// The player exists with a score that is not lower.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

func (s *MongoStore) TopPlayers(ctx context.Context, limit, maxScore int) ([]models.Player, error) {
	filter := bson.M{"score": bson.M{"$gt": 0, "$lte": maxScore}}
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: 1}}).SetLimit(int64(limit))
	cursor, err := s.db.Collection(playersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var list []models.Player
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MongoStore) GetSession(ctx context.Context, playerID, sessionID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.Collection(sessionsCollection).FindOne(ctx, bson.M{"_id": sessionKey(playerID, sessionID)}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MongoStore) PutSession(ctx context.Context, sess *models.Session) error {
	_, err := s.db.Collection(sessionsCollection).ReplaceOne(ctx,
		bson.M{"_id": sessionKey(sess.PlayerID, sess.SessionID)},
		sess,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) FinalizeSession(ctx context.Context, playerID, sessionID string, attempt int, res models.SessionResult) error {
	key := sessionKey(playerID, sessionID)
	filter := bson.M{"_id": key, "attempt": attempt, "gameOverAt": nil}
	update := bson.M{"$set": bson.M{
		"gameOverAt":         res.GameOverAt,
		"finalScore":         res.FinalScore,
		"finalPipesPassed":   res.FinalPipesPassed,
		"finalGiftsReceived": res.FinalGiftsReceived,
	}}

	out, err := s.db.Collection(sessionsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if out.MatchedCount > 0 {
		return nil
	}
	n, err := s.db.Collection(sessionsCollection).CountDocuments(ctx, bson.M{"_id": key})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrSessionEnded
}

func (s *MongoStore) AppendAction(ctx context.Context, a *models.Action) error {
	_, err := s.db.Collection(actionsCollection).InsertOne(ctx, a)
	return err
}

func actionFilter(q ActionQuery) bson.M {
	filter := bson.M{
		"playerId":  q.PlayerID,
		"sessionId": q.SessionID,
		"attempt":   q.Attempt,
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.From != nil || q.To != nil {
		rng := bson.M{}
		if q.From != nil {
			rng["$gte"] = *q.From
		}
		if q.To != nil {
			rng["$lte"] = *q.To
		}
		filter["timestamp"] = rng
	}
	return filter
}

func (s *MongoStore) CountActions(ctx context.Context, q ActionQuery) (int64, error) {
	return s.db.Collection(actionsCollection).CountDocuments(ctx, actionFilter(q))
}

func (s *MongoStore) LatestAction(ctx context.Context, q ActionQuery) (*models.Action, error) {
	var a models.Action
	opts := options.FindOne().SetSort(bson.D{{Key: "serverReceivedAt", Value: -1}})
	err := s.db.Collection(actionsCollection).FindOne(ctx, actionFilter(q), opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) PutCheatRecord(ctx context.Context, r *models.CheatRecord) error {
	_, err := s.db.Collection(cheatsCollection).ReplaceOne(ctx,
		bson.M{"_id": cheatKey(r.PlayerID, r.SessionID, r.Attempt)},
		r,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) ListCheatRecords(ctx context.Context, playerID string) ([]models.CheatRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rejectedAt", Value: -1}})
	cursor, err := s.db.Collection(cheatsCollection).Find(ctx, bson.M{"playerId": playerID}, opts)
	if err != nil {
		return nil, err
	}
	list := []models.CheatRecord{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
