package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/EgorLis/media-gate/internal/app"
)

// @title           Media Gate API
// @version         1.0
// @description     Шлюз доступа к видео уроков: выдача подписанных ссылок и потоковая отдача по диапазонам.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
