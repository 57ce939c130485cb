package queue

import (
	"strings"
	"time"
)

// Gamemode identifies one testing category. The set is closed and known at
// process start.
type Gamemode string

const (
	NPot    Gamemode = "npot"
	Sword   Gamemode = "sword"
	Crystal Gamemode = "crystal"
	Axe     Gamemode = "axe"
	Mace    Gamemode = "mace"
	SMP     Gamemode = "smp"
	DPot    Gamemode = "dpot"
	UHC     Gamemode = "uhc"
)

var gamemodes = []Gamemode{NPot, Sword, Crystal, Axe, Mace, SMP, DPot, UHC}

// Gamemodes returns every supported gamemode in a stable order.
func Gamemodes() []Gamemode {
	return append([]Gamemode(nil), gamemodes...)
}

// ParseGamemode maps user input (any case) to a known gamemode.
func ParseGamemode(s string) (Gamemode, error) {
	g := Gamemode(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", ErrQueueNotFound
	}
	return g, nil
}

func (g Gamemode) Valid() bool {
	for _, k := range gamemodes {
		if k == g {
			return true
		}
	}
	return false
}

// Title is the display form ("sword" -> "Sword").
func (g Gamemode) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// Queue is the wait list and session metadata of one gamemode.
type Queue struct {
	IsOpen        bool
	Players       []string // FIFO, head is pulled first
	ActiveTesters []string // insertion ordered set
	ChannelID     string
	MessageID     string
	OpenedBy      string
	OpenedAt      *time.Time
	LastOpenedAt  *time.Time
	ClosedBy      string
	ClosedAt      *time.Time
	CloseReason   string
	Region        string
}

// FirstPlayer returns the head of the wait list, if any.
func (q Queue) FirstPlayer() (string, bool) {
	if len(q.Players) == 0 {
		return "", false
	}
	return q.Players[0], true
}

// Stored is a queue record as read back from a Store. Nil fields were absent
// in the persisted document and fall back to defaults on rehydration.
type Stored struct {
	IsOpen        *bool
	Players       []string
	ActiveTesters []string
	ChannelID     *string
	MessageID     *string
	OpenedBy      *string
	OpenedAt      *time.Time
	LastOpenedAt  *time.Time
	ClosedBy      *string
	ClosedAt      *time.Time
	CloseReason   *string
	Region        *string
}

// ToStored converts q to its persisted form with every field present.
func ToStored(q Queue) Stored {
	s := snapshot(&q)
	open := s.IsOpen
	str := func(v string) *string { return &v }
	return Stored{
		IsOpen:        &open,
		Players:       s.Players,
		ActiveTesters: s.ActiveTesters,
		ChannelID:     str(s.ChannelID),
		MessageID:     str(s.MessageID),
		OpenedBy:      str(s.OpenedBy),
		OpenedAt:      s.OpenedAt,
		LastOpenedAt:  s.LastOpenedAt,
		ClosedBy:      str(s.ClosedBy),
		ClosedAt:      s.ClosedAt,
		CloseReason:   str(s.CloseReason),
		Region:        str(s.Region),
	}
}
