// internal/app/router.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	d "github.com/jose-valero/stun-tierlist-bot/internal/adapters/discord"
	"github.com/jose-valero/stun-tierlist-bot/internal/domain/events"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
	"github.com/jose-valero/stun-tierlist-bot/internal/ui"
)

const interactionTimeout = 10 * time.Second

const noRoleMsg = "You need the required role to use this command."

// request is what a command needs from an interaction.
type request struct {
	GuildID string
	UserID  string
	Member  *discordgo.Member
	Options map[string]string
}

func (b *Bot) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	var (
		reply string
		after func()
	)
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		log.Printf("[slash] %s by %s in %s", data.Name, d.SafeName(d.UserOf(i)), i.ChannelID)
		reply, after = b.runCommand(ctx, data.Name, requestOf(i, data.Options))
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		log.Printf("[component] %s by %s", customID, d.SafeName(d.UserOf(i)))
		action, gm, ok := ui.ParseButtonID(customID)
		if !ok {
			reply = "⚠️ Unknown action."
			break
		}
		reply = b.press(ctx, action, gm, d.UserID(i))
	default:
		return
	}

	_ = d.SendEphemeral(s, i, reply)
	if after != nil {
		after()
	}
}

func requestOf(i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) request {
	req := request{
		GuildID: i.GuildID,
		UserID:  d.UserID(i),
		Member:  i.Member,
		Options: make(map[string]string, len(opts)),
	}
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionString {
			req.Options[o.Name] = o.StringValue()
		}
	}
	return req
}

// runCommand executes a slash command and returns the ephemeral reply. after,
// when set, runs once the reply is sent.
func (b *Bot) runCommand(ctx context.Context, name string, req request) (reply string, after func()) {
	if req.UserID == "" {
		return "⚠️ Could not identify you.", nil
	}

	switch name {
	case "forcestop":
		if !b.Policy.IsAdmin(req.Member) {
			return noRoleMsg, nil
		}
		reason := req.Options["reason"]
		if reason == "" {
			reason = "Force stopped by server owner"
		}
		n := b.Queues.CloseAll(ctx, req.UserID, reason)
		return fmt.Sprintf("Force stopped all queues. Closed %d queue(s).", n), nil

	case "queuestatus":
		if !b.Policy.IsTester(req.Member) {
			return noRoleMsg, nil
		}
		return ui.StatusText(b.Queues.Snapshot()), nil

	case "startqueue", "closequeue", "pull", "join":
	default:
		return "⚠️ Unknown command.", nil
	}

	if !b.Policy.IsTester(req.Member) {
		return noRoleMsg, nil
	}
	gm, err := queue.ParseGamemode(req.Options["gamemode"])
	if err != nil {
		return errorReply(err, queue.Gamemode(req.Options["gamemode"])), nil
	}

	switch name {
	case "startqueue":
		region := req.Options["region"]
		q, err := b.Queues.Open(ctx, gm, req.UserID, region)
		if err != nil {
			return errorReply(err, gm), nil
		}
		return fmt.Sprintf("✅ %s queue opened in <#%s>.", gm.Title(), q.ChannelID), func() {
			events.Publish(events.QueueOpened{Gamemode: string(gm), TesterID: req.UserID, Region: region})
		}

	case "closequeue":
		q, err := b.Queues.Close(ctx, gm, req.UserID, req.Options["reason"])
		if err != nil {
			return errorReply(err, gm), nil
		}
		return fmt.Sprintf("Closed the %s queue.", gm.Title()), func() {
			events.Publish(events.QueueClosed{Gamemode: string(gm), ClosedBy: req.UserID, Reason: q.CloseReason, Waiting: len(q.Players)})
		}

	case "pull":
		player, err := b.Queues.Pull(ctx, gm, req.UserID)
		if err != nil {
			return errorReply(err, gm), nil
		}
		msg := fmt.Sprintf("Pulled <@%s> from the %s queue.", player, gm.Title())
		if b.Tickets != nil {
			msg += " Opening a ticket channel…"
		}
		ev := events.QueuePulled{GuildID: req.GuildID, Gamemode: string(gm), TesterID: req.UserID, PlayerID: player, At: time.Now()}
		return msg, func() { events.Publish(ev) }

	default: // join
		if err := b.Queues.JoinAsTester(ctx, gm, req.UserID); err != nil {
			return errorReply(err, gm), nil
		}
		return fmt.Sprintf("You joined the %s queue as a tester.", gm.Title()), nil
	}
}

// press handles the Join/Leave buttons under a queue display.
func (b *Bot) press(ctx context.Context, action string, gm queue.Gamemode, userID string) string {
	if userID == "" {
		return "⚠️ Could not identify you."
	}
	switch action {
	case ui.ButtonJoin:
		pos, err := b.Queues.Join(ctx, gm, userID)
		if err != nil {
			return errorReply(err, gm)
		}
		return fmt.Sprintf("You have joined the %s queue! You are #%d in line.", gm, pos)
	case ui.ButtonLeave:
		if err := b.Queues.Leave(ctx, gm, userID); err != nil {
			return errorReply(err, gm)
		}
		return fmt.Sprintf("You have left the %s queue.", gm)
	}
	return "⚠️ Unknown action."
}

func errorReply(err error, gm queue.Gamemode) string {
	switch {
	case errors.Is(err, queue.ErrQueueNotFound):
		return fmt.Sprintf("Queue for %s not found.", gm)
	case errors.Is(err, queue.ErrChannelNotFound):
		return fmt.Sprintf("No waitlist channel found for %s.", gm)
	case errors.Is(err, queue.ErrAlreadyOpen):
		return fmt.Sprintf("The %s queue is already open.", gm)
	case errors.Is(err, queue.ErrAlreadyClosed):
		return fmt.Sprintf("The %s queue is already closed.", gm)
	case errors.Is(err, queue.ErrQueueClosed):
		return fmt.Sprintf("Queue for %s is not open.", gm)
	case errors.Is(err, queue.ErrQueueEmpty):
		return fmt.Sprintf("No players in the %s queue.", gm)
	case errors.Is(err, queue.ErrSelfJoin):
		return "You can't join a queue you are testing."
	case errors.Is(err, queue.ErrAlreadyQueued):
		return "You are already in this queue!"
	case errors.Is(err, queue.ErrNotQueued):
		return "You are not in this queue!"
	case errors.Is(err, queue.ErrAlreadyTester):
		return fmt.Sprintf("You are already a tester for the %s queue.", gm)
	}
	log.Printf("[app] unexpected error gm=%s: %v", gm, err)
	return "⚠️ Something went wrong."
}
