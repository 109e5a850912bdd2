package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ger-comercial/internal/repository"
	"ger-comercial/internal/service"

	"github.com/spf13/cobra"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Process due report schedules once and exit",
	Run:   Dispatch,
}

// Dispatch runs a single scheduling tick. The external trigger (a workflow
// firing at the top of every hour) invokes this with no arguments; a missed
// tick is only corrected by the next hourly invocation.
func Dispatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer func() {
		if err := appDep.Close(); err != nil {
			log.Printf("Failed to close app dependency: %v", err)
		}
	}()

	repo, err := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.cache, appDep.mailer)

	if err := services.DispatcherService.Run(ctx, time.Now()); err != nil {
		log.Fatalf("Dispatch failed: %v", err)
	}
}
