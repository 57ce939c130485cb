package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	channelIDPrefix   = "QUEUE_CHANNEL_"
	channelNamePrefix = "QUEUE_CHANNEL_NAME_"
)

type Config struct {
	Token   string
	AppID   string
	GuildID string

	TesterRoleID     string
	AdminRoleIDs     []string
	TicketCategoryID string // optional parent of ticket channels

	StoreBackend  string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPrefix   string

	AllowReopen        bool
	PropagationTimeout time.Duration

	// waitlist channels keyed by lowercase gamemode
	QueueChannelIDs   map[string]string
	QueueChannelNames map[string]string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:            os.Getenv("DISCORD_BOT_TOKEN"),
		AppID:            os.Getenv("DISCORD_APP_ID"),
		GuildID:          os.Getenv("DISCORD_GUILD_ID"),
		TesterRoleID:     os.Getenv("TESTER_ROLE_ID"),
		AdminRoleIDs:     splitList(os.Getenv("ADMIN_ROLE_IDS")),
		TicketCategoryID: os.Getenv("TICKET_CATEGORY_ID"),

		StoreBackend:  strings.ToLower(firstNonEmpty(os.Getenv("STORE_BACKEND"), BackendMongo)),
		MongoURI:      firstNonEmpty(os.Getenv("MONGODB_URI"), "mongodb://localhost:27017"),
		MongoDatabase: firstNonEmpty(os.Getenv("MONGODB_DATABASE"), "tierlist"),
		RedisAddr:     firstNonEmpty(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPrefix:   firstNonEmpty(os.Getenv("REDIS_PREFIX"), "tierlist"),

		QueueChannelIDs:   map[string]string{},
		QueueChannelNames: map[string]string{},
	}

	var err error
	if cfg.AllowReopen, err = boolEnv("QUEUE_ALLOW_REOPEN", true); err != nil {
		return nil, err
	}
	if cfg.PropagationTimeout, err = durationEnv("QUEUE_PROPAGATION_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	readChannels(cfg, os.Environ())

	if cfg.Token == "" {
		return nil, errors.New("missing DISCORD_BOT_TOKEN")
	}
	if cfg.AppID == "" {
		return nil, errors.New("missing DISCORD_APP_ID")
	}
	if cfg.GuildID == "" {
		return nil, errors.New("missing DISCORD_GUILD_ID")
	}
	switch cfg.StoreBackend {
	case BackendMongo, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want mongo, redis or memory)", cfg.StoreBackend)
	}

	return cfg, nil
}

// readChannels picks up QUEUE_CHANNEL_<MODE> and QUEUE_CHANNEL_NAME_<MODE>.
func readChannels(cfg *Config, environ []string) {
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		v = strings.TrimSpace(v)
		switch {
		case strings.HasPrefix(k, channelNamePrefix):
			cfg.QueueChannelNames[strings.ToLower(strings.TrimPrefix(k, channelNamePrefix))] = v
		case strings.HasPrefix(k, channelIDPrefix):
			cfg.QueueChannelIDs[strings.ToLower(strings.TrimPrefix(k, channelIDPrefix))] = v
		}
	}
}

func boolEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func (c *Config) Redacted() string {
	tok := "[set]"
	if c.Token == "" {
		tok = "[empty]"
	}
	modes := make([]string, 0, len(c.QueueChannelIDs))
	for m := range c.QueueChannelIDs {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return fmt.Sprintf(
		"appID=%s guildID=%s testerRole=%s adminRoles=%d store=%s reopen=%t channels=%v token=%s",
		c.AppID, c.GuildID, c.TesterRoleID, len(c.AdminRoleIDs), c.StoreBackend, c.AllowReopen, modes, tok,
	)
}
