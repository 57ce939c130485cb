// Package queue - contracts.go
// Collaborators the Registry talks to. Both are treated as unreliable: their
// failures are logged and never undo an in-memory mutation.
package queue

import "context"

// Store persists one record per gamemode.
type Store interface {
	Upsert(ctx context.Context, gm Gamemode, q Queue) error
	// LoadAll returns every persisted record. Gamemodes missing from the map
	// were never persisted.
	LoadAll(ctx context.Context) (map[Gamemode]Stored, error)
}

// Notifier keeps the public queue display in sync.
type Notifier interface {
	// RenderOpen posts a new display for a freshly opened session and returns
	// the created message ID.
	RenderOpen(ctx context.Context, gm Gamemode, q Queue) (string, error)
	RenderUpdate(ctx context.Context, gm Gamemode, q Queue, messageID string) error
	RenderClosed(ctx context.Context, gm Gamemode, q Queue, messageID string) error
}

// ChannelResolver finds the channel a gamemode's display lives in.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, gm Gamemode) (string, bool)
}
