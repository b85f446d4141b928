// Command ledgerctl runs operational tasks against a ledger deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/cmd/ledgerctl/cli"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting"
	"github.com/odyssey-erp/hospital-ledger/internal/app"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
	"github.com/odyssey-erp/hospital-ledger/internal/shared"
)

const usage = `usage: ledgerctl <command> [args]

commands:
  migrate [up|down|version]   apply or inspect schema migrations
  seed-chart <tenant-id>      seed the default hospital chart and mappings
  enqueue integrity [tenant]  queue a ledger integrity check
  queue                       show default queue stats
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	args := flag.Args()
	switch args[0] {
	case "migrate":
		err = runMigrate(cfg, logger, args[1:])
	case "seed-chart":
		err = runSeed(ctx, cfg, logger, args[1:])
	case "enqueue":
		err = runEnqueue(ctx, cfg, args[1:])
	case "queue":
		err = runQueue(ctx, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(args[0], slog.Any("error", err))
		os.Exit(1)
	}
}

func runMigrate(cfg *app.Config, logger *slog.Logger, args []string) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	migrator, err := db.NewMigrator(cfg.PGDSN, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch direction {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
}

func runSeed(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) error {
	if len(args) != 1 {
		return errors.New("seed-chart requires a tenant id")
	}
	tenantID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("tenant id: %w", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	module := accounting.New(accounting.Deps{
		Pool:   pool,
		Audit:  shared.NewAuditLogger(pool),
		Logger: logger,
	})
	result, err := module.Seeder.SeedDefaultChart(shared.ContextWithActor(ctx, "ledgerctl"), tenantID)
	if err != nil {
		return err
	}
	fmt.Printf("accounts created=%d kept=%d; mappings created=%d kept=%d\n",
		result.AccountsCreated, result.AccountsKept, result.MappingsCreated, result.MappingsKept)
	return nil
}

func runEnqueue(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("enqueue requires a job name")
	}
	tenant := ""
	if len(args) > 1 {
		tenant = args[1]
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer jobsCLI.Close()

	info, err := jobsCLI.Trigger(ctx, args[0], tenant)
	if err != nil {
		return err
	}
	fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return nil
}

func runQueue(ctx context.Context, cfg *app.Config) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer jobsCLI.Close()

	stats, err := jobsCLI.InspectQueue(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s pending=%d active=%d scheduled=%d retry=%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	return nil
}
