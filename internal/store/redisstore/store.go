// Package redisstore keeps queue records in a single Redis hash, one JSON
// value per gamemode.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jose-valero/stun-tierlist-bot/internal/domain/session"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "tierlist"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key() string {
	return fmt.Sprintf("%s:queues", s.prefix)
}

// record is the JSON shape of one hash value.
type record struct {
	Gamemode      string     `json:"gamemode"`
	IsOpen        bool       `json:"isOpen"`
	Players       []string   `json:"players"`
	ActiveTesters []string   `json:"activeTesters"`
	ChannelID     *string    `json:"channelId"`
	MessageID     *string    `json:"messageId"`
	OpenedBy      *string    `json:"openedBy"`
	OpenedAt      *time.Time `json:"openedAt"`
	LastOpenedAt  *time.Time `json:"lastOpenedAt"`
	ClosedBy      *string    `json:"closedBy"`
	ClosedAt      *time.Time `json:"closedAt"`
	CloseReason   *string    `json:"closeReason"`
	Region        *string    `json:"region"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (s *Store) Upsert(ctx context.Context, gm queue.Gamemode, q queue.Queue) error {
	data, err := encode(gm, q, time.Now())
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key(), string(gm), data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", gm, err)
	}
	return nil
}

// LoadAll reads the whole hash. Values that are not JSON objects are skipped.
func (s *Store) LoadAll(ctx context.Context) (map[queue.Gamemode]queue.Stored, error) {
	vals, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", s.key(), err)
	}
	out := make(map[queue.Gamemode]queue.Stored, len(vals))
	for field, raw := range vals {
		rec, err := decode([]byte(raw))
		if err != nil {
			log.Printf("[redisstore] skipping %s: %v", field, err)
			continue
		}
		out[queue.Gamemode(field)] = rec
	}
	return out, nil
}

func encode(gm queue.Gamemode, q queue.Queue, now time.Time) ([]byte, error) {
	rec := record{
		Gamemode:      string(gm),
		IsOpen:        q.IsOpen,
		Players:       nonNil(q.Players),
		ActiveTesters: nonNil(q.ActiveTesters),
		ChannelID:     nullable(q.ChannelID),
		MessageID:     nullable(q.MessageID),
		OpenedBy:      nullable(q.OpenedBy),
		OpenedAt:      q.OpenedAt,
		LastOpenedAt:  q.LastOpenedAt,
		ClosedBy:      nullable(q.ClosedBy),
		ClosedAt:      q.ClosedAt,
		CloseReason:   nullable(q.CloseReason),
		Region:        nullable(q.Region),
		UpdatedAt:     now.UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode queue %s: %w", gm, err)
	}
	return data, nil
}

// decode reads each field on its own so one mistyped field only drops that
// field.
func decode(data []byte) (queue.Stored, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return queue.Stored{}, err
	}

	var rec queue.Stored
	var open bool
	if field(fields, "isOpen", &open) {
		rec.IsOpen = &open
	}
	field(fields, "players", &rec.Players)
	field(fields, "activeTesters", &rec.ActiveTesters)
	rec.ChannelID = str(fields, "channelId")
	rec.MessageID = str(fields, "messageId")
	rec.OpenedBy = str(fields, "openedBy")
	rec.OpenedAt = ts(fields, "openedAt")
	rec.LastOpenedAt = ts(fields, "lastOpenedAt")
	rec.ClosedBy = str(fields, "closedBy")
	rec.ClosedAt = ts(fields, "closedAt")
	rec.CloseReason = str(fields, "closeReason")
	rec.Region = str(fields, "region")
	return rec, nil
}

func field(fields map[string]json.RawMessage, name string, dst interface{}) bool {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func str(fields map[string]json.RawMessage, name string) *string {
	var s string
	if !field(fields, name, &s) {
		return nil
	}
	return &s
}

func ts(fields map[string]json.RawMessage, name string) *time.Time {
	var t time.Time
	if !field(fields, name, &t) {
		return nil
	}
	return &t
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

func (s *Store) recordsKey() string {
	return fmt.Sprintf("%s:test_records", s.prefix)
}

// SaveTestRecord appends the session to a list and returns its position.
func (s *Store) SaveTestRecord(ctx context.Context, rec session.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode test record: %w", err)
	}
	n, err := s.client.RPush(ctx, s.recordsKey(), data).Result()
	if err != nil {
		return "", fmt.Errorf("redis rpush %s: %w", s.recordsKey(), err)
	}
	return strconv.FormatInt(n-1, 10), nil
}
