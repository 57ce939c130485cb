// Package events - types.go
package events

import "time"

// QueueOpened is emitted after a tester starts a session.
type QueueOpened struct {
	Gamemode string
	TesterID string
	Region   string
}

// QueueClosed is emitted once per queue that actually closed.
type QueueClosed struct {
	Gamemode string
	ClosedBy string
	Reason   string
	Waiting  int // players still in line
}

// QueuePulled is emitted when a tester takes the head of a wait list.
type QueuePulled struct {
	GuildID  string
	Gamemode string
	TesterID string
	PlayerID string
	At       time.Time
}
