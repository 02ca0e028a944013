//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package synth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-datasim/internal/batch"
	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/datagen"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

// TransactionParams controls GenerateTransactions.
type TransactionParams struct {
	// Seed selects a reproducible stream. Nil or "" is non-reproducible.
	Seed any

	Year       int
	Count      int
	MonthStart int
	MonthEnd   int

	// PerHourMin and PerHourMax bound the burst of extra records that
	// repeat a base record within the same hour.
	PerHourMin int
	PerHourMax int

	PurchaseMin float64
	PurchaseMax float64
}

// DefaultTransactionParams returns the stock generation parameters.
func DefaultTransactionParams() TransactionParams {
	return TransactionParams{
		Year:        time.Now().Year(),
		Count:       100,
		MonthStart:  5,
		MonthEnd:    11,
		PerHourMin:  1,
		PerHourMax:  3,
		PurchaseMin: 15,
		PurchaseMax: 1200,
	}
}

// Validate checks the parameters.
func (p TransactionParams) Validate() error {
	switch {
	case p.Count < 0:
		return errs.Validation("count must not be negative, got %d", p.Count)
	case p.Year < 1 || p.Year > 9999:
		return errs.Validation("year %d out of range", p.Year)
	case p.MonthStart < 1 || p.MonthEnd > 12 || p.MonthStart > p.MonthEnd:
		return errs.Validation("invalid month range %d..%d", p.MonthStart, p.MonthEnd)
	case p.PerHourMin < 0 || p.PerHourMax < p.PerHourMin:
		return errs.Validation("invalid per-hour range %d..%d", p.PerHourMin, p.PerHourMax)
	case p.PurchaseMin <= 0 || p.PurchaseMax < p.PurchaseMin:
		return errs.Validation("invalid purchase range %.2f..%.2f", p.PurchaseMin, p.PurchaseMax)
	}
	return nil
}

// Transaction is one synthesized coupon transaction.
type Transaction struct {
	CaptureDate     string // DD/MM/YYYY
	CaptureTime     string // HH:MM
	MerchantName    string
	Category        string
	District        string
	CampaignID      string
	CouponID        string
	CouponType      string
	Product         string
	CouponValue     decimal.Decimal
	PurchaseValue   decimal.Decimal
	PaybackValue    decimal.Decimal
	CaptureLocation string
	Cep             string
	Zone            string
}

// Columns returns the destination columns in the order Values uses.
func (t Transaction) Columns() []string {
	return schema.TransactionColumns
}

// Values converts the record to insert parameters. The capture date
// becomes a DATE and the capture time a timestamp in the capture zone.
func (t Transaction) Values() ([]any, error) {
	ts, err := datagen.ParseCaptureTimestamp(t.CaptureDate, t.CaptureTime)
	if err != nil {
		return nil, errs.Validation("%v", err)
	}
	date := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)

	return []any{
		date,
		ts,
		t.MerchantName,
		t.Category,
		t.District,
		t.CampaignID,
		t.CouponID,
		t.CouponType,
		t.Product,
		t.CouponValue,
		t.PurchaseValue,
		t.PaybackValue,
		t.CaptureLocation,
		t.Cep,
		t.Zone,
	}, nil
}

var nonWordRE = regexp.MustCompile(`\W+`)

// CampaignID derives the campaign identifier for a category.
func CampaignID(category string) string {
	return "CAMP-" + datagen.Truncate(nonWordRE.ReplaceAllString(strings.ToUpper(category), "_"), 12)
}

// InferProduct maps a category and coupon type to a product label.
func InferProduct(category, couponType string) string {
	c := strings.ToLower(category)
	discount := datagen.IsDiscount(couponType)

	switch {
	case strings.Contains(c, "esporte"):
		if discount {
			return "Desconto academia"
		}
		return "Plano de academia"
	case strings.Contains(c, "restaur"):
		if discount {
			return "Desconto refeição"
		}
		return "Refeição"
	case strings.Contains(c, "papelaria"):
		return "Material escolar"
	case strings.Contains(c, "supermercado"):
		return "Itens de mercado"
	case strings.Contains(c, "livraria"):
		return "Livro"
	case strings.Contains(c, "farmácia"):
		return "Medicamentos/Perfumaria"
	case strings.Contains(c, "eletro"), strings.Contains(c, "móveis"):
		return "Eletrodoméstico"
	case strings.Contains(c, "moda"):
		return "Vestuário/Acessórios"
	case strings.Contains(c, "cafeteria"):
		return "Bebida/Alimento"
	case strings.Contains(c, "saúde"), strings.Contains(c, "clínica"):
		return "Exame/Procedimento"
	default:
		return "Produto"
	}
}

// GenerateTransactions synthesizes exactly p.Count records. Each base
// record may be followed by a burst of copies that differ only in coupon
// id and minute. With a seed, the output is identical across runs.
func GenerateTransactions(cat *catalog.Catalogs, p TransactionParams) ([]Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(cat.Zones) == 0 || len(cat.Categories) == 0 || len(cat.CouponTypes) == 0 || len(cat.CaptureLocations) == 0 {
		return nil, errs.Configuration("reference catalogs are incomplete")
	}

	r := datagen.NewRNG(p.Seed)
	out := make([]Transaction, 0, p.Count)
	burstSpan := max(1, p.PerHourMax-p.PerHourMin+1)

	for len(out) < p.Count {
		zone := datagen.PickOne(r, cat.Zones)
		district := datagen.PickOne(r, zone.Districts)
		cep, err := datagen.RandomCep(district.CepStart, district.CepEnd, r)
		if err != nil {
			return nil, errs.Configuration("district %s: %v", district.Name, err)
		}

		category := datagen.PickOne(r, cat.Categories)
		merchant := datagen.PickOne(r, category.Merchants)
		couponType := datagen.PickOne(r, cat.CouponTypes)

		purchase := datagen.CurrencyBetween(p.PurchaseMin, p.PurchaseMax, r)
		coupon := datagen.CouponValue(purchase, couponType, r)
		location := datagen.PickOne(r, cat.CaptureLocations)

		date := datagen.SampleDateInRange(p.Year, p.MonthStart, p.MonthEnd, r)
		hour, minute := datagen.SampleHourMinute(category.Name, r)

		base := Transaction{
			CaptureDate:     datagen.FormatDate(date),
			CaptureTime:     datagen.FormatHM(hour, minute),
			MerchantName:    merchant,
			Category:        category.Name,
			District:        district.Name,
			CampaignID:      CampaignID(category.Name),
			CouponID:        r.Compact12(),
			CouponType:      couponType,
			Product:         InferProduct(category.Name, couponType),
			CouponValue:     coupon,
			PurchaseValue:   purchase,
			PaybackValue:    datagen.Payback(coupon, purchase),
			CaptureLocation: location,
			Cep:             cep,
			Zone:            zone.Name,
		}
		out = append(out, base)

		extra := p.PerHourMin + int(r.Next()*float64(burstSpan)) - 1
		for i := 0; i < extra && len(out) < p.Count; i++ {
			dup := out[len(out)-1]
			dup.CaptureTime = datagen.FormatHM(hour, datagen.SampleMinute(r))
			dup.CouponID = r.Compact12()
			out = append(out, dup)
		}
	}

	return out[:p.Count], nil
}

// TransactionRows projects records onto schema.TransactionColumns.
func TransactionRows(txs []Transaction) ([][]any, error) {
	rows := make([][]any, len(txs))
	for i, t := range txs {
		values, err := t.Values()
		if err != nil {
			return nil, err
		}
		rows[i] = values
	}
	return rows, nil
}

// PersistTransactions writes records in a single transaction.
func PersistTransactions(ctx context.Context, db batch.DB, table string, txs []Transaction, chunkSize int) (int, error) {
	rows, err := TransactionRows(txs)
	if err != nil {
		return 0, err
	}

	n, err := batch.Insert(ctx, db, table, schema.TransactionColumns, rows, chunkSize, batch.Transactional)
	if err != nil {
		return n, err
	}

	logging.Info().
		Str("table", table).
		Int("rows", n).
		Msg("Transactions persisted")
	return n, nil
}
