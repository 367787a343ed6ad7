package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"petcare/internal/modules/pricing"
)

type quoteOptions struct {
	file     string
	rateCard string
	holidays string
	output   string
}

func newQuoteCmd(a *app) *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a request file",
		Long: `Price a JSON pricing request.

With --rate-card the request is priced offline against that card and the
--holidays list. Without it the live catalog and holiday calendar are loaded
from the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := readRequest(opts.file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var q pricing.Quote
			if opts.rateCard != "" {
				card, err := readRateCard(opts.rateCard, a.cfg.Pricing.Currency)
				if err != nil {
					return err
				}
				svc := pricing.NewService(nil, parseHolidays(opts.holidays), nil, a.cfg.Pricing.Currency, a.log)
				q, err = svc.QuoteWithCard(ctx, req, card)
				if err != nil {
					return err
				}
			} else {
				db, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				q, err = a.pricingFromDB(db).Estimate(ctx, req)
				if err != nil {
					return err
				}
			}
			return writeQuote(cmd.OutOrStdout(), q, opts.output)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "request JSON file (- for stdin)")
	cmd.Flags().StringVar(&opts.rateCard, "rate-card", "", "rate card JSON file for offline pricing")
	cmd.Flags().StringVar(&opts.holidays, "holidays", "", "comma separated YYYY-MM-DD holidays for offline pricing")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "output format: table or json")
	return cmd
}

func readRequest(path string, stdin io.Reader) (pricing.PricingRequest, error) {
	var req pricing.PricingRequest
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func readRateCard(path, currency string) (pricing.RateCard, error) {
	var card pricing.RateCard
	b, err := os.ReadFile(path)
	if err != nil {
		return card, err
	}
	if err := json.Unmarshal(b, &card); err != nil {
		return card, fmt.Errorf("decode rate card: %w", err)
	}
	if card.ID == "" {
		card.ID = "file"
	}
	if card.Currency == "" {
		card.Currency = currency
	}
	return card, card.Validate()
}

func parseHolidays(list string) pricing.HolidaySet {
	var dates []string
	for _, d := range strings.Split(list, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dates = append(dates, d)
		}
	}
	return pricing.NewHolidaySet(dates...)
}

func writeQuote(w io.Writer, q pricing.Quote, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, li := range q.LineItems {
		fmt.Fprintf(tw, "%s\t%s\t\n", li.Description, li.Amount)
	}
	fmt.Fprintf(tw, "Total\t%s %s\t\n", q.Total, q.Currency)
	if q.DistanceEstimated {
		fmt.Fprintln(tw, "(distance is an estimate)\t\t")
	}
	return tw.Flush()
}
