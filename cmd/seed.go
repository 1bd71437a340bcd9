package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/timeclock/internal/employee"
	employeepg "github.com/frahmantamala/timeclock/internal/employee/postgres"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bootstrap the first administrator account",
	Long:  `Create the initial administrator so the API has a login to manage employees with. Does nothing when an administrator already exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		if seedAdminPin == "" {
			log.Fatal("--admin-pin is required")
		}

		logger.Init(os.Getenv("APP_ENV"))

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		repo := employeepg.NewEmployeeRepository(gormDB)
		svc := employee.NewService(repo, logger.LoggerWrapper(), cfg.Security.BCryptCost)

		admin, created, err := svc.BootstrapAdmin(context.Background(), seedAdminName, seedAdminPin)
		if err != nil {
			log.Fatalf("failed to bootstrap admin: %v", err)
		}

		if !created {
			fmt.Println("an administrator already exists; nothing to do")
			return
		}

		fmt.Printf("Seeded administrator %q (id %d)\n", admin.Name, admin.ID)
	},
}
