package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petcare/internal/modules/reservation"
	"petcare/internal/types"
)

var errDrift = errors.New("reconciliation found drift")

type reconciler interface {
	ListConfirmed(ctx context.Context, limit int) ([]reservation.Reservation, error)
	Requote(ctx context.Context, id types.ID) (reservation.Drift, error)
}

func newReconcileCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-price confirmed reservations from their snapshots",
		Long: `Re-price every confirmed reservation with the rate card it was confirmed
with and compare against the stored total. Exits non-zero on any drift.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := reservation.NewService(reservation.NewStore(db), a.pricingFromDB(db), nil, "", a.log)
			if limit <= 0 {
				limit = a.cfg.Reconcile.Limit
			}
			return runReconcile(ctx, svc, limit, cmd.OutOrStdout(), a.log)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum reservations to check (default PETCARE_RECONCILE_LIMIT)")
	return cmd
}

type reconcileSummary struct {
	Pass, Fail, Errors int
}

func runReconcile(ctx context.Context, svc reconciler, limit int, w io.Writer, log *zap.Logger) error {
	list, err := svc.ListConfirmed(ctx, limit)
	if err != nil {
		return fmt.Errorf("list confirmed: %w", err)
	}

	var sum reconcileSummary
	for _, r := range list {
		d, err := svc.Requote(ctx, r.ID)
		switch {
		case err != nil:
			sum.Errors++
			fmt.Fprintf(w, "ERROR %s %v\n", r.ID, err)
			log.Warn("requote failed", zap.String("id", string(r.ID)), zap.Error(err))
		case d.Match():
			sum.Pass++
			fmt.Fprintf(w, "PASS  %s %s\n", r.ID, d.Stored)
		default:
			sum.Fail++
			fmt.Fprintf(w, "FAIL  %s stored=%s recomputed=%s\n", r.ID, d.Stored, d.Recomputed)
		}
	}

	fmt.Fprintln(w, "\n== Summary ==")
	fmt.Fprintf(w, "PASS=%d FAIL=%d ERROR=%d\n", sum.Pass, sum.Fail, sum.Errors)
	if sum.Fail > 0 || sum.Errors > 0 {
		return errDrift
	}
	return nil
}
