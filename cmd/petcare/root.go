package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petcare/internal/config"
	"petcare/internal/infra"
	"petcare/internal/modules/holiday"
	"petcare/internal/modules/pricing"
)

type app struct {
	cfg     config.Config
	log     *zap.Logger
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "petcare",
		Short: "Price pet-care bookings and reconcile confirmed quotes",
		Long: `petcare prices overnight stays, walks and home visits with the same
engine the API uses.

Examples:
  petcare quote --file request.json
  petcare quote --file request.json --rate-card walk.json --holidays 2026-05-01,2026-05-03
  petcare reconcile --limit 200`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newQuoteCmd(a))
	root.AddCommand(newReconcileCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Log.Format = "console"
	cfg.Log.Output = "stderr"
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	log, err := infra.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	db, err := infra.NewDB(ctx, a.cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

// pricingFromDB builds the pricing service over the live catalog and holiday calendar.
// Routes are not resolved offline; requests must carry distance_km.
func (a *app) pricingFromDB(db *pgxpool.Pool) *pricing.Service {
	holidays := holiday.NewService(holiday.NewStore(db), a.log)
	return pricing.NewService(pricing.NewStore(db), holidays, nil, a.cfg.Pricing.Currency, a.log)
}
