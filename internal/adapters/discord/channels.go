// internal/adapters/discord/channels.go
// Finds the waitlist channel of each gamemode: configured ID first, then by name.

package discord

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

type channelAPI interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

type ChannelResolver struct {
	api     channelAPI
	state   *discordgo.State // optional cache, checked before REST
	guildID string
	ids     map[queue.Gamemode]string
	names   map[queue.Gamemode]string

	found sync.Map // gamemode -> channelID resolved by name
}

func NewChannelResolver(api channelAPI, state *discordgo.State, guildID string, ids, names map[queue.Gamemode]string) *ChannelResolver {
	return &ChannelResolver{api: api, state: state, guildID: guildID, ids: ids, names: names}
}

// ResolveChannel implements queue.ChannelResolver.
func (r *ChannelResolver) ResolveChannel(ctx context.Context, gm queue.Gamemode) (string, bool) {
	if id := r.ids[gm]; id != "" {
		if r.exists(ctx, id) {
			return id, true
		}
		log.Printf("[channels] configured channel %s for %s not found, trying by name", id, gm)
	}
	if v, ok := r.found.Load(gm); ok {
		return v.(string), true
	}

	name := r.names[gm]
	if name == "" {
		name = string(gm) + "-waitlist"
	}
	chans, err := r.api.GuildChannels(r.guildID, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("[channels] list guild channels: %v", err)
		return "", false
	}
	for _, c := range chans {
		if c == nil || c.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			r.found.Store(gm, c.ID)
			return c.ID, true
		}
	}
	return "", false
}

func (r *ChannelResolver) exists(ctx context.Context, id string) bool {
	if r.state != nil {
		if c, err := r.state.Channel(id); err == nil && c != nil {
			return true
		}
	}
	c, err := r.api.Channel(id, discordgo.WithContext(ctx))
	return err == nil && c != nil
}
