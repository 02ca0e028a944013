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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "Show the reference catalogs",
	Long: `Show the merchant categories, postal zones, coupon types and capture
locations the generators draw from. Catalog files configured under
'catalogs' replace the embedded defaults.`,
	RunE: runCatalogs,
}

func runCatalogs(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(cfg.Catalogs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	heading(out, "Merchant categories (%d)", len(cat.Categories))
	table := newTable(out, "Category", "Merchants", "Campaign")
	for _, c := range cat.Categories {
		table.Append([]string{c.Name, fmt.Sprint(len(c.Merchants)), synth.CampaignID(c.Name)})
	}
	table.Render()
	fmt.Fprintln(out)

	heading(out, "Postal zones (%d)", len(cat.Zones))
	table = newTable(out, "Zone", "District", "CEP range")
	for _, z := range cat.Zones {
		for _, d := range z.Districts {
			table.Append([]string{z.Name, d.Name, d.CepStart + " - " + d.CepEnd})
		}
	}
	table.Render()
	fmt.Fprintln(out)

	heading(out, "Coupon types")
	fmt.Fprintf(out, "  %s\n\n", strings.Join(cat.CouponTypes, ", "))

	heading(out, "Capture locations")
	fmt.Fprintf(out, "  %s\n", strings.Join(cat.CaptureLocations, ", "))
	return nil
}
