package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// logsCounterID names the counters document holding the last log sequence.
const logsCounterID = "logs"

// MongoStore keeps activity logs in a MongoDB collection. It is the
// alternative to the Postgres logs table when LOG_BACKEND=mongo.
//
// Every entry carries a sequence number taken from a counters document, so
// listing follows insertion order even when timestamps collide. The
// sequence doubles as the entry id, like the BIGSERIAL id in Postgres.
type MongoStore struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

// mongoLog is the stored document: the entry plus its sequence number.
type mongoLog struct {
	models.LogEntry `bson:",inline"`
	Seq             int64 `bson:"seq"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		col:      db.Collection("logs"),
		counters: db.Collection("counters"),
	}
}

// ConnectMongo opens a client and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique sequence index used for listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo index: %w", err)
	}
	return nil
}

// nextSeq atomically increments and returns the log sequence.
func (s *MongoStore) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": logsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("mongo log sequence: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) InsertLog(ctx context.Context, e *models.LogEntry) (string, error) {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return "", err
	}
	e.ID = strconv.FormatInt(seq, 10)
	e.Timestamp = time.Now().UTC()
	if _, err := s.col.InsertOne(ctx, mongoLog{LogEntry: *e, Seq: seq}); err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	return e.ID, nil
}

// ListLogs returns every entry in insertion order.
func (s *MongoStore) ListLogs(ctx context.Context) ([]models.LogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoLog
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	logs := make([]models.LogEntry, 0, len(docs))
	for _, d := range docs {
		d.Timestamp = d.Timestamp.UTC()
		logs = append(logs, d.LogEntry)
	}
	return logs, nil
}
