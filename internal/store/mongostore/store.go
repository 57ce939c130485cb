// Package mongostore persists queue records and test sessions in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jose-valero/stun-tierlist-bot/internal/domain/session"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

const (
	queuesCollection      = "queues"
	testRecordsCollection = "test_records"
)

type Store struct {
	queues  *mongo.Collection
	records *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		queues:  db.Collection(queuesCollection),
		records: db.Collection(testRecordsCollection),
	}
}

// Upsert merges the record into the gamemode's document, creating it if needed.
func (s *Store) Upsert(ctx context.Context, gm queue.Gamemode, q queue.Queue) error {
	filter := bson.D{{Key: "_id", Value: string(gm)}}
	update := bson.D{{Key: "$set", Value: queueFields(gm, q, time.Now())}}
	if _, err := s.queues.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo upsert queue %s: %w", gm, err)
	}
	return nil
}

// LoadAll reads every queue document. Documents that cannot be mapped to a
// gamemode are skipped.
func (s *Store) LoadAll(ctx context.Context) (map[queue.Gamemode]queue.Stored, error) {
	cur, err := s.queues.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo find queues: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[queue.Gamemode]queue.Stored)
	for cur.Next(ctx) {
		gm, rec, ok := decodeStored(cur.Current)
		if !ok {
			continue
		}
		out[gm] = rec
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo iterate queues: %w", err)
	}
	return out, nil
}

// SaveTestRecord stores a pulled-player session and returns its document ID.
func (s *Store) SaveTestRecord(ctx context.Context, rec session.Record) (string, error) {
	doc := bson.D{
		{Key: "testerId", Value: rec.TesterID},
		{Key: "playerId", Value: rec.PlayerID},
		{Key: "gamemode", Value: rec.Gamemode},
		{Key: "ticketChannelId", Value: nullable(rec.TicketChannelID)},
		{Key: "timestamp", Value: rec.Timestamp},
		{Key: "createdAt", Value: time.Now()},
	}
	res, err := s.records.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongo insert test record: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		return id.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

func queueFields(gm queue.Gamemode, q queue.Queue, now time.Time) bson.D {
	return bson.D{
		{Key: "gamemode", Value: string(gm)},
		{Key: "isOpen", Value: q.IsOpen},
		{Key: "players", Value: nonNil(q.Players)},
		{Key: "activeTesters", Value: nonNil(q.ActiveTesters)},
		{Key: "channelId", Value: nullable(q.ChannelID)},
		{Key: "messageId", Value: nullable(q.MessageID)},
		{Key: "openedBy", Value: nullable(q.OpenedBy)},
		{Key: "openedAt", Value: q.OpenedAt},
		{Key: "lastOpenedAt", Value: q.LastOpenedAt},
		{Key: "closedBy", Value: nullable(q.ClosedBy)},
		{Key: "closedAt", Value: q.ClosedAt},
		{Key: "closeReason", Value: nullable(q.CloseReason)},
		{Key: "region", Value: nullable(q.Region)},
		{Key: "updatedAt", Value: now},
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
