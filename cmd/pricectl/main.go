package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/gtd_pricing/internal/cache"
	"github.com/GTDGit/gtd_pricing/internal/config"
	"github.com/GTDGit/gtd_pricing/internal/database"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pkg/clock"
	"github.com/GTDGit/gtd_pricing/internal/repository"
	"github.com/GTDGit/gtd_pricing/internal/service"
)

var (
	cfg     *config.Config
	db      *sqlx.DB
	actorID string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricectl",
	Short: "Operator CLI for the pricing engine",
	Long: `pricectl runs schema migrations and the pricing operations an operator
needs outside the HTTP API: applying a pricing rule, reverting a bulk update
and reconciling sales with their windows.`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "pricectl", "actor id recorded on ledger rows")
}

// persistentPreRun loads config and connects the database before each command.
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var err error
	if cfg, err = config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if db, err = database.Connect(&cfg.DB); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// operator is the admin identity CLI mutations run as.
func operator() models.Actor {
	return models.Actor{ID: actorID, Role: models.RoleAdmin}
}

type services struct {
	bulk  *service.BulkPriceService
	rules *service.PricingRuleService
	sales *service.SaleService
}

// newServices wires the services against db. The CLI never shares the API's
// Redis cache, so sale mutations leave cached lists to expire on their TTL.
func newServices() *services {
	store := repository.NewStore(db)
	clk := clock.NewRealClock()
	bulk := service.NewBulkPriceService(store, clk)
	return &services{
		bulk:  bulk,
		rules: service.NewPricingRuleService(store, bulk, clk, cfg.Pricing.PreviewLimit),
		sales: service.NewSaleService(store, cache.NoopSaleCache{}, clk),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
