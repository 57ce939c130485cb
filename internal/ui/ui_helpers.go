package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

// StatusText renders the /queuestatus overview, one line per gamemode.
func StatusText(snap map[queue.Gamemode]queue.Queue) string {
	var b strings.Builder
	b.WriteString("**Queue Status**\n\n")
	for _, gm := range queue.Gamemodes() {
		q := snap[gm]
		name := strings.ToUpper(string(gm))
		if q.IsOpen {
			fmt.Fprintf(&b, "**%s**: 🟢 OPEN (%d players)\n", name, len(q.Players))
			continue
		}
		fmt.Fprintf(&b, "**%s**: 🔴 CLOSED\n", name)
	}
	return b.String()
}

func mention(id string) string {
	return "<@" + id + ">"
}

func playerList(ids []string) string {
	if len(ids) == 0 {
		return "No players in queue yet"
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = fmt.Sprintf("%d. %s", i+1, mention(id))
	}
	return strings.Join(lines, "\n")
}

func testerList(q queue.Queue) string {
	if len(q.ActiveTesters) == 0 {
		if q.OpenedBy == "" {
			return "—"
		}
		return mention(q.OpenedBy)
	}
	lines := make([]string, len(q.ActiveTesters))
	for i, id := range q.ActiveTesters {
		lines[i] = mention(id)
	}
	return strings.Join(lines, "\n")
}

func humanTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Unknown"
	}
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}

func orDefault(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}
