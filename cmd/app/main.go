package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivankudrin/messenger/internal/app"
	"github.com/ivankudrin/messenger/internal/config"
	"github.com/ivankudrin/messenger/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	ctx := context.Background()
	ctx = logger.New(ctx, []string{"stdout"}, cfg.Env)

	log := logger.GetFromCtx(ctx)

	a, err := app.Register(ctx, cfg)
	if err != nil {
		log.Fatal(ctx, "failed to init app", zap.Error(err))
	}

	a.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.GracefulStop(ctx)
	_ = log.Sync()
}
