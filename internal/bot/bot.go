package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-invite-tracker/internal/cache"
	"discord-invite-tracker/internal/commands"
	"discord-invite-tracker/internal/config"
	"discord-invite-tracker/internal/database"
	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/metrics"
	"discord-invite-tracker/internal/redis"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const eventTimeout = 30 * time.Second

type Bot struct {
	Session   *discordgo.Session
	Config    *config.Manager
	Tracker   *invites.Tracker
	Names     *cache.Names
	Cache     *cache.Cache
	DB        *database.Database // nil on the file store
	Redis     *redis.Client      // nil without redis
	StartTime time.Time
	Logger    *zap.Logger

	platform *sessionPlatform
	deps     *commands.Deps
	metrics  *http.Server
}

// New builds the gateway session and the tracker around it. store is where
// counts and invited-by records are persisted.
func New(cfg *config.Manager, store invites.Store, db *database.Database, rdb *redis.Client, logger *zap.Logger) (*Bot, error) {
	c := cfg.Config()
	if c.Token == "" {
		return nil, fmt.Errorf("%w: bot token", invites.ErrConfigurationMissing)
	}

	s, err := discordgo.New("Bot " + c.Token)
	if err != nil {
		return nil, fmt.Errorf("session error: %w", err)
	}

	tr := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	s.Client = &http.Client{
		Transport: &PerfTransport{Base: tr},
		Timeout:   15 * time.Second,
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildInvites |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	// Guild membership is tracked by the platform adapter; nothing else
	// needs the state cache.
	s.StateEnabled = false
	s.ShouldReconnectOnError = true
	s.ShouldRetryOnRateLimit = true
	s.MaxRestRetries = 3

	if logger == nil {
		logger = zap.NewNop()
	}

	platform := newSessionPlatform(s)
	notifier := &channelNotifier{s: s, channel: cfg.WelcomeChannelID}
	tracker := invites.NewTracker(platform, notifier, cfg, store, logger.Named("invites"))

	nameCache, err := cache.NewCache(rdb, cache.Config{})
	if err != nil {
		return nil, err
	}
	names := cache.NewNames(nameCache, platform)

	b := &Bot{
		Session:   s,
		Config:    cfg,
		Tracker:   tracker,
		Names:     names,
		Cache:     nameCache,
		DB:        db,
		Redis:     rdb,
		StartTime: time.Now(),
		Logger:    logger,
		platform:  platform,
	}
	b.deps = &commands.Deps{
		Tracker:   tracker,
		Config:    cfg,
		Names:     names,
		Cache:     nameCache,
		DB:        db,
		Redis:     rdb,
		StartTime: b.StartTime,
		Guilds:    platform.guildCount,
	}

	s.AddHandler(b.Ready)
	s.AddHandler(b.GuildCreate)
	s.AddHandler(b.GuildDelete)
	s.AddHandler(b.GuildMemberAdd)
	s.AddHandler(b.GuildMemberRemove)
	s.AddHandler(b.InviteCreate)
	s.AddHandler(b.InviteDelete)
	s.AddHandler(b.InteractionCreate)
	s.AddHandler(b.MessageCreate)

	return b, nil
}

// Start loads persisted data, connects to the gateway and blocks until the
// process is interrupted.
func (b *Bot) Start() error {
	log.Println("📂 Loading invite data...")
	if err := b.Tracker.Load(context.Background()); err != nil {
		return fmt.Errorf("loading invite data: %w", err)
	}

	log.Println("⚡ Connecting to Discord Gateway...")
	if err := b.Session.Open(); err != nil {
		log.Printf("❌ Failed to connect to Discord Gateway: %v", err)
		log.Println("   Common causes:")
		log.Println("   • Invalid bot token in config.json or DISCORD_TOKEN")
		log.Println("   • Server Members / Message Content intents not enabled")
		log.Println("   • Network connectivity issues")
		return fmt.Errorf("gateway connection failed: %w", err)
	}
	log.Println("✓ Connected to Discord Gateway")

	if b.Session.State.User == nil {
		u, err := b.Session.User("@me")
		if err != nil {
			return fmt.Errorf("failed to get bot user: %w", err)
		}
		b.Session.State.User = u
	}
	log.Printf("✓ Logged in as: %s (ID: %s)", b.Session.State.User.Username, b.Session.State.User.ID)

	log.Println("Registering commands...")
	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, "", commands.Commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.Printf("✓ Registered %d commands", len(commands.Commands))

	go b.monitorHeartbeat()
	b.serveMetrics()

	log.Printf("🎨 Current style: %s", b.Config.CurrentStyle())
	log.Println("\n🚀 Bot is running!")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	return b.Close()
}

func (b *Bot) serveMetrics() {
	addr := b.Config.Config().MetricsAddr
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	b.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("📊 Metrics and pprof on http://%s", addr)
		if err := b.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.Logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func (b *Bot) Close() error {
	log.Println("Shutting down...")
	if b.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		b.metrics.Shutdown(ctx)
		cancel()
	}
	b.Cache.Close()
	if b.DB != nil {
		b.DB.Close()
	}
	if b.Redis != nil {
		b.Redis.Close()
	}
	b.Logger.Sync()
	return b.Session.Close()
}

func (b *Bot) eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), eventTimeout)
}
