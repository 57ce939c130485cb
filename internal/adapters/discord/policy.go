// internal/adapters/discord/policy.go
// Tester privilege: TESTER_ROLE_ID, one of ADMIN_ROLE_IDS, or Administrator.

package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Policy struct {
	testerRole string
	adminRoles map[string]struct{}
}

func NewPolicy(testerRole string, adminRoles []string) *Policy {
	p := &Policy{testerRole: strings.TrimSpace(testerRole), adminRoles: map[string]struct{}{}}
	for _, id := range adminRoles {
		if id = strings.TrimSpace(id); id != "" {
			p.adminRoles[id] = struct{}{}
		}
	}
	return p
}

// IsTester reports whether the member may run queue sessions.
func (p *Policy) IsTester(m *discordgo.Member) bool {
	if p.IsAdmin(m) {
		return true
	}
	if m == nil || p.testerRole == "" {
		return false
	}
	for _, r := range m.Roles {
		if r == p.testerRole {
			return true
		}
	}
	return false
}

// IsAdmin is the stricter check used for guild-wide actions.
func (p *Policy) IsAdmin(m *discordgo.Member) bool {
	if m == nil {
		return false
	}
	if m.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, r := range m.Roles {
		if _, ok := p.adminRoles[r]; ok {
			return true
		}
	}
	return false
}
