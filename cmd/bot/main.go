// Command bot starts the tier list testing queue bot.
//
// this binary:
//  1. loads config from environment variables (.env during dev)
//  2. connects the configured queue store and rehydrates the registry
//  3. creates a discord session and registers the app handlers
//  4. opens the gateway and waits for a signal from the OS
//  5. flushes every queue to the store before exiting
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	disc "github.com/jose-valero/stun-tierlist-bot/internal/adapters/discord"
	"github.com/jose-valero/stun-tierlist-bot/internal/app"
	"github.com/jose-valero/stun-tierlist-bot/internal/domain/session"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
	"github.com/jose-valero/stun-tierlist-bot/internal/store/memstore"
	"github.com/jose-valero/stun-tierlist-bot/internal/store/mongostore"
	"github.com/jose-valero/stun-tierlist-bot/internal/store/redisstore"
	"github.com/jose-valero/stun-tierlist-bot/pkg/config"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 20 * time.Second
)

// backend is a queue store that can also keep test records.
type backend interface {
	queue.Store
	session.Recorder
}

func main() {
	// load .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer closeStore()

	// the prefix "Bot " is required for bot tokens
	sess, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Fatalf("discord session error: %v", err)
	}
	sess.Identify.Intents = discordgo.IntentsGuilds

	iconURL := func() string {
		g, err := sess.State.Guild(cfg.GuildID)
		if err != nil || g == nil {
			return ""
		}
		return g.IconURL("")
	}

	reg := queue.NewRegistry(
		store,
		disc.NewNotifier(sess, iconURL),
		disc.NewChannelResolver(sess, sess.State, cfg.GuildID, byGamemode(cfg.QueueChannelIDs), byGamemode(cfg.QueueChannelNames)),
		queue.Options{
			AllowReopen:        cfg.AllowReopen,
			PropagationTimeout: cfg.PropagationTimeout,
		},
	)

	// rehydrate before the gateway opens so no command sees default state
	loadCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	n, err := reg.Rehydrate(loadCtx)
	cancel()
	if err != nil {
		log.Printf("[main] starting with empty queues: %v", err)
	} else {
		log.Printf("[main] rehydrated %d queue(s)", n)
	}

	b := app.NewBot(sess, cfg, reg)
	b.Tickets = disc.NewTickets(sess, cfg.GuildID, cfg.TicketCategoryID, iconURL)
	b.Records = store

	// handlers go in before the gateway opens so no interaction is dropped
	if err := b.RegisterHandlers(); err != nil {
		log.Printf("[main] register commands: %v", err)
	}
	if err := sess.Open(); err != nil {
		log.Fatalf("open gateway error: %v", err)
	}

	log.Printf("🤖 bot ready - %s", cfg.Redacted())

	// block till SIGINT/SIGTERM for a clean shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down, saving queues")
	b.Stop()
	flushCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	if failed := reg.PersistAll(flushCtx); failed > 0 {
		log.Printf("[main] %d queue(s) could not be saved", failed)
	}
	cancel()

	if err := sess.Close(); err != nil {
		log.Printf("[main] close gateway: %v", err)
	}
}

// openStore connects the configured backend and returns its close func.
func openStore(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Println("[store] using in-memory store, queues are lost on exit")
		return memstore.New(), func() {}, nil

	case config.BackendRedis:
		opts, err := redisOptions(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Println("[store] connected to Redis")
		return redisstore.New(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil

	default:
		connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(connCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		log.Println("[store] connected to MongoDB")
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return mongostore.New(client.Database(cfg.MongoDatabase)), closeFn, nil
	}
}

// redisOptions accepts either host:port or a redis:// URL.
func redisOptions(addr string) (*redis.Options, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

func byGamemode(m map[string]string) map[queue.Gamemode]string {
	out := make(map[queue.Gamemode]string, len(m))
	for k, v := range m {
		gm, err := queue.ParseGamemode(k)
		if err != nil {
			log.Printf("[main] ignoring channel setting for unknown gamemode %q", k)
			continue
		}
		out[gm] = v
	}
	return out
}
