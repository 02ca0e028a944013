//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

var (
	genSeed       string
	genYear       int
	genCount      int
	genMonthStart int
	genMonthEnd   int
	genPerHourMin int
	genPerHourMax int
	genChunkSize  int
	genDryRun     bool
	genPreview    int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate coupon transactions",
	Long: `Generate coupon transactions for the configured year and month range
and insert them into the transactions table in one database transaction.

A seed makes the run reproducible: the same seed and parameters always
produce the same records. With --dry-run nothing is written and a
preview of the records is printed instead.

Example:
  pgedge-datasim generate --count 5000 --seed 42
  pgedge-datasim generate --count 20 --month-start 1 --month-end 1 --dry-run`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genSeed, "seed", "",
		"seed for a reproducible run (number or text)")
	generateCmd.Flags().IntVar(&genYear, "year", 0,
		"capture year (default: current year)")
	generateCmd.Flags().IntVar(&genCount, "count", -1,
		"number of transactions to generate")
	generateCmd.Flags().IntVar(&genMonthStart, "month-start", 0,
		"first capture month (1-12)")
	generateCmd.Flags().IntVar(&genMonthEnd, "month-end", 0,
		"last capture month (1-12)")
	generateCmd.Flags().IntVar(&genPerHourMin, "per-hour-min", -1,
		"minimum burst size within an hour")
	generateCmd.Flags().IntVar(&genPerHourMax, "per-hour-max", -1,
		"maximum burst size within an hour")
	generateCmd.Flags().IntVar(&genChunkSize, "chunk-size", 0,
		"rows per INSERT statement")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false,
		"print a preview instead of writing")
	generateCmd.Flags().IntVar(&genPreview, "preview", 10,
		"number of records shown by --dry-run")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if genSeed != "" {
		cfg.Generate.Seed = genSeed
	}
	if genYear > 0 {
		cfg.Generate.Year = genYear
	}
	if genCount >= 0 {
		cfg.Generate.Count = genCount
	}
	if genMonthStart > 0 {
		cfg.Generate.MonthStart = genMonthStart
	}
	if genMonthEnd > 0 {
		cfg.Generate.MonthEnd = genMonthEnd
	}
	if genPerHourMin >= 0 {
		cfg.Generate.PerHourMin = genPerHourMin
	}
	if genPerHourMax >= 0 {
		cfg.Generate.PerHourMax = genPerHourMax
	}
	if genChunkSize > 0 {
		cfg.Generate.ChunkSize = genChunkSize
	}

	// A dry run never touches the database
	params := cfg.TransactionParams()
	if genDryRun {
		if err := params.Validate(); err != nil {
			return err
		}
	} else if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalogs)
	if err != nil {
		return err
	}

	started := time.Now()
	txs, err := synth.GenerateTransactions(cat, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if genDryRun {
		printPreview(out, txs, genPreview)
		printTransactionSummary(out, txs, 0, time.Since(started))
		return nil
	}

	ctx := context.Background()
	pool, store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	table, err := resolveTransactions(ctx, store)
	if err != nil {
		return err
	}

	logging.Info().
		Str("table", table).
		Int("count", len(txs)).
		Int("year", params.Year).
		Msg("Inserting transactions")

	n, err := synth.PersistTransactions(ctx, store, table, txs, cfg.Generate.ChunkSize)
	if err != nil {
		return fmt.Errorf("failed to insert transactions: %w", err)
	}

	printTransactionSummary(out, txs, n, time.Since(started))
	return nil
}

func printPreview(w io.Writer, txs []synth.Transaction, limit int) {
	if limit <= 0 || len(txs) == 0 {
		return
	}
	if limit > len(txs) {
		limit = len(txs)
	}

	heading(w, "Preview (%d of %d)", limit, len(txs))
	table := newTable(w, "Date", "Time", "Merchant", "Category", "Coupon", "Type",
		"Purchase", "Coupon value", "Payback", "CEP", "Zone")
	for _, t := range txs[:limit] {
		table.Append([]string{
			t.CaptureDate,
			t.CaptureTime,
			t.MerchantName,
			t.Category,
			t.CouponID,
			t.CouponType,
			t.PurchaseValue.StringFixed(2),
			t.CouponValue.StringFixed(2),
			t.PaybackValue.StringFixed(2),
			t.Cep,
			t.Zone,
		})
	}
	table.Render()
	fmt.Fprintln(w)
}

func printTransactionSummary(w io.Writer, txs []synth.Transaction, inserted int, elapsed time.Duration) {
	purchases, coupons, payback := decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range txs {
		purchases = purchases.Add(t.PurchaseValue)
		coupons = coupons.Add(t.CouponValue)
		payback = payback.Add(t.PaybackValue)
	}

	heading(w, "Summary")
	summaryLine(w, "Generated", len(txs))
	if genDryRun {
		summaryLine(w, "Inserted", warnColor.Sprint("dry run"))
	} else {
		summaryLine(w, "Inserted", inserted)
	}
	summaryLine(w, "Purchases", purchases.StringFixed(2))
	summaryLine(w, "Coupon value", coupons.StringFixed(2))
	summaryLine(w, "Payback", payback.StringFixed(2))
	summaryLine(w, "Elapsed", elapsed.Round(time.Millisecond))
}
