package main

import (
	"context"
	"flag"
	"log"
	"os"
	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	application := app.New(cfg)
	if err := application.Init(context.Background()); err != nil {
		log.Fatalf("Ошибка инициализации: %v", err)
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Error("Сервер остановлен с ошибкой", err)
			_ = application.Shutdown(context.Background())
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		application.ShutdownOperations(),
	)

	exitCode := <-wait
	logger.Info("Приложение завершено")
	os.Exit(exitCode)
}
