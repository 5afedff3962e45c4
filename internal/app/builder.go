package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EgorLis/media-gate/internal/auth/blacklist"
	"github.com/EgorLis/media-gate/internal/auth/password"
	"github.com/EgorLis/media-gate/internal/auth/token"
	"github.com/EgorLis/media-gate/internal/config"
	"github.com/EgorLis/media-gate/internal/domain"
	redisx "github.com/EgorLis/media-gate/internal/infra/cache/redis"
	"github.com/EgorLis/media-gate/internal/infra/database/postgres"
	"github.com/EgorLis/media-gate/internal/media/playback"
	"github.com/EgorLis/media-gate/internal/media/signing"
	"github.com/EgorLis/media-gate/internal/media/storage"
	"github.com/EgorLis/media-gate/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	cache  domain.Cache
	repo   *postgres.PGRepo
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	storeLog := log.New(base.Writer(), base.Prefix()+"[storage] ", base.Flags())
	issuerLog := log.New(base.Writer(), base.Prefix()+"[playback] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	base.Println("init video storage")
	store, err := storage.New(cfg.MediaStorageDir, storeLog)
	if err != nil {
		return nil, fmt.Errorf("failed init storage: %w", err)
	}

	// Auth primitives
	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)
	bl := blacklist.NewStore(rc)

	// Media primitives
	signer := signing.New(cfg.MediaSigningSecret)
	issuer := playback.New(issuerLog, pgRepo, pgRepo, rc, signer, cfg.MediaPlaybackTTL)

	base.Println("init Server")
	server := web.New(serverLog, cfg, web.Deps{
		Users:     pgRepo,
		Lessons:   pgRepo,
		Cache:     rc,
		Hasher:    hasher,
		Tokens:    tm,
		Blacklist: bl,
		Issuer:    issuer,
		Signer:    signer,
		Store:     store,
		StorePing: store,
	})
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		cache:  rc,
		repo:   pgRepo,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return nil
}
