// internal/adapters/discord/tickets.go
// Private text channel where a tester runs the session with a pulled player.

package discord

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
	"github.com/jose-valero/stun-tierlist-bot/internal/ui"
)

const ticketPerms = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

var reNonSlug = regexp.MustCompile(`[^a-z0-9]`)

type ticketAPI interface {
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

type Tickets struct {
	api        ticketAPI
	guildID    string
	categoryID string // optional parent
	iconURL    func() string
	now        func() time.Time
}

func NewTickets(api ticketAPI, guildID, categoryID string, iconURL func() string) *Tickets {
	return &Tickets{api: api, guildID: guildID, categoryID: categoryID, iconURL: iconURL, now: time.Now}
}

// Create opens a channel visible only to the tester and the player and
// posts the ticket card. It returns the new channel ID.
func (t *Tickets) Create(ctx context.Context, gm queue.Gamemode, testerID, playerID string) (string, error) {
	name := playerID
	if u, err := t.api.User(playerID, discordgo.WithContext(ctx)); err == nil && u != nil {
		name = u.Username
	}

	ch, err := t.api.GuildChannelCreateComplex(t.guildID, discordgo.GuildChannelCreateData{
		Name:     ticketName(name, gm),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: t.categoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			// @everyone shares the guild ID
			{ID: t.guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: testerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketPerms},
			{ID: playerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketPerms},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create ticket channel: %w", err)
	}

	icon := ""
	if t.iconURL != nil {
		icon = t.iconURL()
	}
	_, err = t.api.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Content: ui.TicketContent(testerID, playerID),
		Embeds:  []*discordgo.MessageEmbed{ui.TicketEmbed(gm, testerID, playerID, icon, t.now())},
	}, discordgo.WithContext(ctx))
	if err != nil {
		// the channel is usable without the card
		log.Printf("[tickets] post ticket card ch=%s: %v", ch.ID, err)
	}
	log.Printf("[tickets] CREATE ch=%s gm=%s tester=%s player=%s", ch.ID, gm, testerID, playerID)
	return ch.ID, nil
}

func ticketName(username string, gm queue.Gamemode) string {
	slug := reNonSlug.ReplaceAllString(strings.ToLower(username), "-")
	return fmt.Sprintf("🎫-%s-%s", slug, gm)
}
