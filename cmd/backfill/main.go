// Command backfill creates user and wallet records for every early-access
// submission that is not yet linked to a user.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/rwa-intake/config"
	"github.com/yourusername/rwa-intake/logging"
	"github.com/yourusername/rwa-intake/migration"
	"github.com/yourusername/rwa-intake/users"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userSvc := users.NewService(db, cfg.StellarNetwork, log)
	userSvc.Treasury = cfg.StellarTreasury
	backfill := migration.NewBackfill(db, userSvc, log)
	report, err := backfill.Run(ctx)

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))

	if err != nil {
		log.Error("backfill aborted", zap.Error(err))
		os.Exit(1)
	}
}
