package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

const ephemeralFlag = discordgo.MessageFlagsEphemeral

// SendEphemeral posts a message only visible to the user who interacted.
func SendEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   ephemeralFlag,
		},
	})
	if err != nil {
		log.Printf("[reply] SendEphemeral error: %v", err)
	}
	return err
}

// UserOf extracts the effective user from an interaction (guild or DM).
func UserOf(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// UserID is UserOf(i).ID, or "" when the interaction carries no user.
func UserID(i *discordgo.InteractionCreate) string {
	if u := UserOf(i); u != nil {
		return u.ID
	}
	return ""
}

// SafeName returns the username, or "unknown" for a nil user.
func SafeName(u *discordgo.User) string {
	if u == nil {
		return "unknown"
	}
	return u.Username
}
