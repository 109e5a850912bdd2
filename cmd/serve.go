package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ger-comercial/internal/delivery/http"
	"ger-comercial/internal/repository"
	"ger-comercial/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API with the in-process hourly dispatcher",
	Run:   Serve,
}

func Serve(cmd *cobra.Command, args []string) {

	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.cache, appDep.mailer)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// In-process trigger replaces the external hourly workflow when the
	// service runs as a long-lived process.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(appDep.cfg.Dispatch.CronSpec, func() {
		if err := services.DispatcherService.Run(ctx, time.Now()); err != nil {
			appDep.log.Error("Scheduled dispatch failed", zap.Error(err))
		}
	})
	if err != nil {
		log.Fatalf("Failed to register dispatch cron: %v", err)
	}
	scheduler.Start()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
