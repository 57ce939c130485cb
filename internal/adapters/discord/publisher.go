package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
	"github.com/jose-valero/stun-tierlist-bot/internal/ui"
)

// ErrMessageGone is returned when the display message was deleted by hand.
// The registry re-posts the display when it sees it.
var ErrMessageGone error = queue.ErrDisplayGone

// messenger is the slice of *discordgo.Session the notifier needs.
type messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier renders queue displays into their waitlist channels.
type Notifier struct {
	s       messenger
	iconURL func() string

	chLocks sync.Map // channelID -> *sync.Mutex
}

// NewNotifier; iconURL may be nil.
func NewNotifier(s messenger, iconURL func() string) *Notifier {
	return &Notifier{s: s, iconURL: iconURL}
}

func (n *Notifier) chanLock(channelID string) *sync.Mutex {
	v, _ := n.chLocks.LoadOrStore(channelID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (n *Notifier) icon() string {
	if n.iconURL == nil {
		return ""
	}
	return n.iconURL()
}

// RenderOpen posts a fresh display with the @here ping and the buttons.
func (n *Notifier) RenderOpen(ctx context.Context, gm queue.Gamemode, q queue.Queue) (string, error) {
	if q.ChannelID == "" {
		return "", fmt.Errorf("render open %s: no channel", gm)
	}
	mu := n.chanLock(q.ChannelID)
	mu.Lock()
	defer mu.Unlock()

	msg, err := n.s.ChannelMessageSendComplex(q.ChannelID, &discordgo.MessageSend{
		Content:    ui.OpenContent(q),
		Embeds:     []*discordgo.MessageEmbed{ui.OpenEmbed(gm, q, n.icon())},
		Components: ui.QueueButtons(gm),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeEveryone,
				discordgo.AllowedMentionTypeUsers,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send queue message: %w", err)
	}
	if msg == nil {
		return "", fmt.Errorf("send queue message: empty response")
	}
	log.Printf("[notifier] CREATE gm=%s id=%s ch=%s", gm, msg.ID, q.ChannelID)
	return msg.ID, nil
}

// RenderUpdate edits the open display in place, keeping the buttons.
func (n *Notifier) RenderUpdate(ctx context.Context, gm queue.Gamemode, q queue.Queue, messageID string) error {
	embeds := []*discordgo.MessageEmbed{ui.OpenEmbed(gm, q, n.icon())}
	comps := ui.QueueButtons(gm)
	return n.edit(ctx, gm, &discordgo.MessageEdit{
		Channel:    q.ChannelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &comps,
	})
}

// RenderClosed swaps the display for the closed card and drops the buttons.
func (n *Notifier) RenderClosed(ctx context.Context, gm queue.Gamemode, q queue.Queue, messageID string) error {
	content := ""
	embeds := []*discordgo.MessageEmbed{ui.ClosedEmbed(gm, q)}
	comps := []discordgo.MessageComponent{}
	return n.edit(ctx, gm, &discordgo.MessageEdit{
		Channel:    q.ChannelID,
		ID:         messageID,
		Content:    &content,
		Embeds:     &embeds,
		Components: &comps,
	})
}

func (n *Notifier) edit(ctx context.Context, gm queue.Gamemode, m *discordgo.MessageEdit) error {
	if m.Channel == "" || m.ID == "" {
		return fmt.Errorf("edit %s: missing channel or message", gm)
	}
	mu := n.chanLock(m.Channel)
	mu.Lock()
	defer mu.Unlock()

	if _, err := n.s.ChannelMessageEditComplex(m, discordgo.WithContext(ctx)); err != nil {
		if isUnknownMessage(err) {
			return fmt.Errorf("edit %s msg=%s: %w", gm, m.ID, ErrMessageGone)
		}
		return fmt.Errorf("edit %s msg=%s: %w", gm, m.ID, err)
	}
	log.Printf("[notifier] EDIT gm=%s id=%s ch=%s", gm, m.ID, m.Channel)
	return nil
}

// isUnknownMessage matches Discord error 10008.
func isUnknownMessage(err error) bool {
	var re *discordgo.RESTError
	return errors.As(err, &re) && re.Message != nil && re.Message.Code == discordgo.ErrCodeUnknownMessage
}
