package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/media-gate/internal/config"
	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/playback"
	"github.com/EgorLis/media-gate/internal/media/signing"
	"github.com/EgorLis/media-gate/internal/transport/web/mw"
	authv1 "github.com/EgorLis/media-gate/internal/transport/web/v1/auth"
	"github.com/EgorLis/media-gate/internal/transport/web/v1/health"
	mediav1 "github.com/EgorLis/media-gate/internal/transport/web/v1/media"
)

// Deps — всё, что нужно серверу от остального приложения.
type Deps struct {
	Users     domain.UsersRepo
	Lessons   domain.LessonsRepo
	Cache     domain.Cache
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
	Issuer    *playback.Issuer
	Signer    *signing.Signer
	Store     mediav1.Store
	StorePing health.Pinger
}

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, d Deps) *Server {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	authLog := log.New(logger.Writer(), logger.Prefix()+"[auth] ", logger.Flags())
	mediaLog := log.New(logger.Writer(), logger.Prefix()+"[media] ", logger.Flags())

	h := handlers{
		health: &health.Handler{Log: healthLog, DB: d.Users, Cache: d.Cache, Storage: d.StorePing},
		login:  &authv1.HandlerLogin{Log: authLog, Users: d.Users, Hasher: d.Hasher, Tokens: d.Tokens},
		logout: &authv1.HandlerLogout{Log: authLog, Tokens: d.Tokens, Blacklist: d.Blacklist},
		media: &mediav1.Handler{
			Log:     mediaLog,
			Lessons: d.Lessons,
			Issuer:  d.Issuer,
			Signer:  d.Signer,
			Store:   d.Store,
		},
	}
	auth := mw.AuthDeps{Tokens: d.Tokens, Blacklist: d.Blacklist}

	srv := &http.Server{
		Addr:    cfg.AppPort,
		Handler: newRouter(h, auth, logger),
		// стрим отдаёт окна <=1 МиБ, долгих ответов нет
		ReadTimeout:       10 * time.Minute, // загрузка видео может быть долгой
		WriteTimeout:      1 * time.Minute,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
