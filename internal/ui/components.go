// internal/ui/components.go
// Join/Leave buttons attached to an open queue display.

package ui

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

const (
	ButtonJoin  = "join"
	ButtonLeave = "leave"
)

func QueueButtons(gm queue.Gamemode) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join Queue",
					Style:    discordgo.PrimaryButton,
					CustomID: ButtonJoin + "_" + string(gm),
				},
				discordgo.Button{
					Label:    "Leave Queue",
					Style:    discordgo.DangerButton,
					CustomID: ButtonLeave + "_" + string(gm),
				},
			},
		},
	}
}

// ParseButtonID splits "join_sword" into its action and gamemode.
func ParseButtonID(id string) (action string, gm queue.Gamemode, ok bool) {
	action, rest, found := strings.Cut(id, "_")
	if !found || (action != ButtonJoin && action != ButtonLeave) {
		return "", "", false
	}
	gm = queue.Gamemode(rest)
	if !gm.Valid() {
		return "", "", false
	}
	return action, gm, true
}
