// internal/app/commands.go
package app

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

var regions = []string{"NA", "EU", "AS", "ME", "AU"}

func gamemodeOption() *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(queue.Gamemodes()))
	for _, gm := range queue.Gamemodes() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  strings.ToUpper(string(gm)),
			Value: string(gm),
		})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "gamemode",
		Description: "The gamemode queue",
		Required:    true,
		Choices:     choices,
	}
}

func regionOption() *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(regions))
	for _, r := range regions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: r, Value: r})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "region",
		Description: "Region you are testing in",
		Required:    true,
		Choices:     choices,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Why the queue is being closed",
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "startqueue",
		Description: "Open a gamemode queue in its waitlist channel",
		Type:        discordgo.ChatApplicationCommand,
		Options:     []*discordgo.ApplicationCommandOption{gamemodeOption(), regionOption()},
	},
	{
		Name:        "closequeue",
		Description: "Close a gamemode queue",
		Type:        discordgo.ChatApplicationCommand,
		Options:     []*discordgo.ApplicationCommandOption{gamemodeOption(), reasonOption()},
	},
	{
		Name:        "forcestop",
		Description: "Close every open queue",
		Type:        discordgo.ChatApplicationCommand,
		Options:     []*discordgo.ApplicationCommandOption{reasonOption()},
	},
	{
		Name:        "pull",
		Description: "Pull the next player from a queue and open a ticket",
		Type:        discordgo.ChatApplicationCommand,
		Options:     []*discordgo.ApplicationCommandOption{gamemodeOption()},
	},
	{
		Name:        "join",
		Description: "Join an open queue as an additional tester",
		Type:        discordgo.ChatApplicationCommand,
		Options:     []*discordgo.ApplicationCommandOption{gamemodeOption()},
	},
	{
		Name:        "queuestatus",
		Description: "Show the status of all queues",
		Type:        discordgo.ChatApplicationCommand,
	},
}

// RegisterCommands creates (or updates) guild-level commands.
func RegisterCommands(s *discordgo.Session, appID, guildID string) error {
	for _, c := range commands {
		if _, err := s.ApplicationCommandCreate(appID, guildID, c); err != nil {
			return err
		}
	}
	return nil
}
