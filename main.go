package main

import (
	"chatrelay/internal/config"
	"chatrelay/internal/database/db_client"
	"chatrelay/internal/friendstore"
	"chatrelay/internal/friendsync"
	"chatrelay/internal/http/http_server"
	"chatrelay/internal/redis/redis_client"
	"chatrelay/internal/relay"
	"chatrelay/internal/ws"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var Log *zap.Logger

func main() {
	Log = newLogger(false)
	defer func() { _ = Log.Sync() }()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.LogDevelopment {
		_ = Log.Sync()
		Log = newLogger(true)
		zap.ReplaceGlobals(Log)
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Friendship store ➜ seed the in-memory graph
	store, closeStore, err := openFriendStore(ctx, cfg)
	if err != nil {
		Log.Fatal("friend-store-open", zap.String("backend", cfg.FriendStore), zap.Error(err))
	}
	defer closeStore()

	edges, err := store.Load(ctx)
	if err != nil {
		Log.Fatal("friend-store-load", zap.Error(err))
	}
	graph := relay.NewMemoryGraph(edges...)
	Log.Info("friend graph loaded", zap.String("backend", cfg.FriendStore), zap.Int("edges", len(edges)))

	// 4. Background: write-behind friend persistence
	batcher := friendsync.New(store, cfg.FriendFlushInterval, cfg.FriendFlushBatch, cfg.FriendFlushBatch*10)
	go batcher.Run(ctx)

	// 5. Relay hub (owns rooms, typing, presence; runs the liveness monitor)
	hub := relay.NewHub(graph, relay.Options{
		LivenessInterval: cfg.LivenessInterval,
		QueueSize:        cfg.InboundQueueSize,
		Sink:             batcher,
	})
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	// 6. WS transport
	wsSrv := ws.NewWsServer(hub, ws.Options{
		SendBuffer:     cfg.SendBufferSize,
		MaxFrameSize:   cfg.MaxFrameSize,
		WriteWait:      cfg.WriteWait,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, hub)
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}

	<-hubDone
	<-batcher.Done()
	Log.Info("shutdown complete")
}

func newLogger(development bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openFriendStore picks the persistence backend; the returned func closes
// whatever client was opened.
func openFriendStore(ctx context.Context, cfg *config.Config) (friendstore.Store, func(), error) {
	switch cfg.FriendStore {
	case config.FriendStoreRedis:
		rdb, err := redis_client.NewRedisClient(ctx, redis_client.Options{
			Host:     cfg.RedisHost,
			Port:     int(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return friendstore.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil

	case config.FriendStorePostgres:
		db, err := db_client.Open(ctx, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			return nil, nil, err
		}
		store := friendstore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil

	default:
		return friendstore.Memory{}, func() {}, nil
	}
}
