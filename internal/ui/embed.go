package ui

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

const (
	colorOpen   = 0x00FF00
	colorClosed = 0xFF0000
	colorTicket = 0x9B59B6

	defaultRegion = "AS/AU"
)

// OpenEmbed is the live display of an open queue.
func OpenEmbed(gm queue.Gamemode, q queue.Queue, iconURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Queue:", gm.Title()),
		Description: "\nClick on the buttons to join/leave the queue.\n",
		Color:       colorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Region:", Value: orDefault(q.Region, defaultRegion)},
			{Name: "Queue:", Value: playerList(q.Players)},
			{Name: "Available Testers:", Value: testerList(q)},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Click the buttons below to join or leave the queue",
			IconURL: iconURL,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// OpenContent pings the channel and the tester that opened the queue.
func OpenContent(q queue.Queue) string {
	if q.OpenedBy == "" {
		return "@here"
	}
	return fmt.Sprintf("@here %s", mention(q.OpenedBy))
}

// ClosedEmbed replaces the display once the session ends.
func ClosedEmbed(gm queue.Gamemode, q queue.Queue) *discordgo.MessageEmbed {
	emb := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Queue - CLOSED", gm.Title()),
		Description: "**No Tester Online**\n" +
			"No testers for your region are available at this time. You will be pinged when a tester is available.\n\n" +
			"Check back later.",
		Color: colorClosed,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Last testing session: " + humanTime(q.LastOpenedAt),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if first, ok := q.FirstPlayer(); ok {
		emb.Fields = append(emb.Fields, &discordgo.MessageEmbedField{
			Name:  "🎮 First Player",
			Value: mention(first),
		})
	}
	return emb
}

// TicketEmbed opens a pulled player's ticket channel.
func TicketEmbed(gm queue.Gamemode, testerID, playerID, iconURL string, at time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎫 TEST TICKET CREATED",
		Color: colorTicket,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👨‍🔬 Tester", Value: mention(testerID), Inline: true},
			{Name: "🎮 Player", Value: mention(playerID), Inline: true},
			{Name: "🏆 Gamemode", Value: "**" + gm.Title() + "**", Inline: true},
			{Name: "📋 Instructions", Value: "Please conduct the testing session here.\nOnce complete, record the player's rank."},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Stun Tierlist • " + at.UTC().Format("2006-01-02"),
			IconURL: iconURL,
		},
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

// TicketContent pings both participants.
func TicketContent(testerID, playerID string) string {
	return fmt.Sprintf("🎫 %s %s", mention(testerID), mention(playerID))
}
