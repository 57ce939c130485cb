package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

type fakeChannelAPI struct {
	byID      map[string]*discordgo.Channel
	guild     []*discordgo.Channel
	listCalls int
}

func (f *fakeChannelAPI) Channel(id string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, errors.New("404")
}

func (f *fakeChannelAPI) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.listCalls++
	return f.guild, nil
}

func TestResolveChannel_ConfiguredID(t *testing.T) {
	api := &fakeChannelAPI{byID: map[string]*discordgo.Channel{"111": {ID: "111"}}}
	r := NewChannelResolver(api, nil, "g", map[queue.Gamemode]string{queue.Sword: "111"}, nil)

	id, ok := r.ResolveChannel(context.Background(), queue.Sword)
	if !ok || id != "111" {
		t.Fatalf("want 111, got %q %v", id, ok)
	}
	if api.listCalls != 0 {
		t.Fatalf("should not list guild channels")
	}
}

func TestResolveChannel_FallsBackToName(t *testing.T) {
	api := &fakeChannelAPI{guild: []*discordgo.Channel{
		{ID: "v1", Name: "sword-waitlist", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "t1", Name: "Sword-Waitlist", Type: discordgo.ChannelTypeGuildText},
	}}
	r := NewChannelResolver(api, nil, "g", map[queue.Gamemode]string{queue.Sword: "gone"}, nil)

	id, ok := r.ResolveChannel(context.Background(), queue.Sword)
	if !ok || id != "t1" {
		t.Fatalf("want t1, got %q %v", id, ok)
	}
	// cached
	_, _ = r.ResolveChannel(context.Background(), queue.Sword)
	if api.listCalls != 1 {
		t.Fatalf("want 1 list call, got %d", api.listCalls)
	}
}

func TestResolveChannel_CustomNameAndMissing(t *testing.T) {
	api := &fakeChannelAPI{guild: []*discordgo.Channel{{ID: "t2", Name: "uhc-queue", Type: discordgo.ChannelTypeGuildText}}}
	r := NewChannelResolver(api, nil, "g", nil, map[queue.Gamemode]string{queue.UHC: "uhc-queue"})

	if id, ok := r.ResolveChannel(context.Background(), queue.UHC); !ok || id != "t2" {
		t.Fatalf("want t2, got %q %v", id, ok)
	}
	if _, ok := r.ResolveChannel(context.Background(), queue.Mace); ok {
		t.Fatalf("mace has no channel")
	}
}
