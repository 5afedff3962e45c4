package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/media-gate/internal/docs"
	"github.com/EgorLis/media-gate/internal/transport/web/mw"
	authv1 "github.com/EgorLis/media-gate/internal/transport/web/v1/auth"
	"github.com/EgorLis/media-gate/internal/transport/web/v1/health"
	mediav1 "github.com/EgorLis/media-gate/internal/transport/web/v1/media"
)

type handlers struct {
	health *health.Handler
	login  *authv1.HandlerLogin
	logout *authv1.HandlerLogout
	media  *mediav1.Handler
}

func newRouter(h handlers, auth mw.AuthDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", h.health.Liveness)
	mux.HandleFunc("GET /v1/readyz", h.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/auth/login", h.login.Login)
	mux.HandleFunc("POST /api/auth/logout", h.logout.Logout)

	// media: playback и upload — за Bearer; stream — токен в самой ссылке
	mux.Handle("GET /media/lessons/{lessonID}/playback",
		mw.RequireAuth(auth, http.HandlerFunc(h.media.Playback)))
	mux.Handle("POST /media/lessons/{lessonID}/video",
		mw.RequireAuth(auth, limitBody(1<<30, h.media.Upload))) // 1GB лимит
	mux.HandleFunc("GET /media/lessons/{lessonID}/stream", h.media.Stream)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
