package session

import (
	"context"
	"time"
)

// Record is one testing session started by pulling a player off a queue.
type Record struct {
	TesterID        string    `json:"testerId"`
	PlayerID        string    `json:"playerId"`
	Gamemode        string    `json:"gamemode"`
	TicketChannelID string    `json:"ticketChannelId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Recorder keeps test session records.
type Recorder interface {
	SaveTestRecord(ctx context.Context, rec Record) (string, error)
}
