package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/timeclock/internal/autoclockout"
	autoclockoutpg "github.com/frahmantamala/timeclock/internal/autoclockout/postgres"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the auto-clockout scheduler",
	Long:  `Run the background scheduler that closes open time entries at closing time so nobody accrues overtime.`,
	Run: func(cmd *cobra.Command, args []string) {
		startScheduler()
	},
}

func startScheduler() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm connection: %v\n", err)
		os.Exit(1)
	}

	repo := autoclockoutpg.NewAutoClockoutRepository(gormDB)
	service := autoclockout.NewService(repo, autoclockout.NewSchedule(cfg.Schedule), log)

	log.Info("scheduler started",
		"check_interval", cfg.Schedule.CheckInterval,
		"weekday_closing_hour", cfg.Schedule.WeekdayClosingHour,
		"sunday_closing_hour", cfg.Schedule.SundayClosingHour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Schedule.CheckInterval)
	defer ticker.Stop()

	// run once at startup so a restart right after closing time still
	// catches the day's open entries
	runCheck(ctx, service, log)

	for {
		select {
		case <-ticker.C:
			runCheck(ctx, service, log)
		case sig := <-sigChan:
			log.Info("received signal, shutting down scheduler", "signal", sig)
			return
		}
	}
}

func runCheck(ctx context.Context, service *autoclockout.Service, log *slog.Logger) {
	result, err := service.CheckAndRun(ctx)
	if err != nil {
		log.Error("scheduled auto-clockout failed", "error", err)
		return
	}
	if result.ClosedCount > 0 || len(result.Errors) > 0 {
		log.Info("scheduled auto-clockout completed",
			"closed", result.ClosedCount,
			"skipped", result.SkippedOpen,
			"errors", len(result.Errors))
	}
}
