package app

import (
	"context"

	"github.com/bwmarrin/discordgo"

	disc "github.com/jose-valero/stun-tierlist-bot/internal/adapters/discord"
	"github.com/jose-valero/stun-tierlist-bot/internal/domain/session"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
	"github.com/jose-valero/stun-tierlist-bot/pkg/config"
)

// ticketOpener creates the private channel for a pulled player.
type ticketOpener interface {
	Create(ctx context.Context, gm queue.Gamemode, testerID, playerID string) (string, error)
}

type Bot struct {
	Sess    *discordgo.Session
	Cfg     *config.Config
	Queues  *queue.Registry
	Policy  *disc.Policy
	Tickets ticketOpener     // nil disables ticket channels
	Records session.Recorder // nil disables test records

	cancelBus func()
}

func NewBot(s *discordgo.Session, cfg *config.Config, reg *queue.Registry) *Bot {
	return &Bot{
		Sess:   s,
		Cfg:    cfg,
		Queues: reg,
		Policy: disc.NewPolicy(cfg.TesterRoleID, cfg.AdminRoleIDs),
	}
}

func (b *Bot) RegisterHandlers() error {
	// 1) interaction router (slash + buttons)
	b.Sess.AddHandler(b.HandleInteraction)

	// 2) bus subscribers: tickets, test records, audit log
	b.cancelBus = b.StartEventSubscribers()

	// 3) register/update guild slash commands
	return RegisterCommands(b.Sess, b.Cfg.AppID, b.Cfg.GuildID)
}

// Stop detaches the bus subscribers.
func (b *Bot) Stop() {
	if b.cancelBus != nil {
		b.cancelBus()
	}
}
