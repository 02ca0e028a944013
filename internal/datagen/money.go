//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coupon types recognized by the value bands.
const (
	CouponDiscount = "Desconto"
	CouponCashback = "Cashback"
)

var (
	paybackCouponRate   = decimal.RequireFromString("0.13")
	paybackPurchaseRate = decimal.RequireFromString("0.07")
	hundred             = decimal.NewFromInt(100)
)

// Band is a half-open [Low, High) range of coupon-to-purchase ratios.
type Band struct {
	Low  float64
	High float64
}

// Contains reports whether ratio lies in the band.
func (b Band) Contains(ratio float64) bool {
	return ratio >= b.Low && ratio < b.High
}

// NormalizeCouponType maps a coupon type to CouponDiscount or
// CouponCashback. Matching is case-insensitive and accepts the English
// names as well. Other types are returned trimmed.
func NormalizeCouponType(couponType string) string {
	trimmed := strings.TrimSpace(couponType)
	switch strings.ToLower(trimmed) {
	case "desconto", "discount":
		return CouponDiscount
	case "cashback":
		return CouponCashback
	default:
		return trimmed
	}
}

// IsDiscount reports whether couponType names a discount coupon.
func IsDiscount(couponType string) bool {
	return NormalizeCouponType(couponType) == CouponDiscount
}

// BandFor returns the coupon ratio band for a coupon type.
func BandFor(couponType string) Band {
	switch NormalizeCouponType(couponType) {
	case CouponDiscount:
		return Band{Low: 0.05, High: 0.40}
	case CouponCashback:
		return Band{Low: 0.02, High: 0.20}
	default:
		return Band{Low: 0.03, High: 0.25}
	}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CurrencyBetween draws a whole number of cents in [min, max] and returns it
// as a two-place decimal.
func CurrencyBetween(min, max float64, r *RNG) decimal.Decimal {
	lo := decimal.NewFromFloat(min).Mul(hundred).Ceil().IntPart()
	hi := decimal.NewFromFloat(max).Mul(hundred).Floor().IntPart()
	cents := int64(r.IntBetween(int(lo), int(hi)))
	return decimal.New(cents, -2)
}

// CouponValue derives a coupon value from a purchase and a ratio drawn in
// the band for couponType. The ratio is consumed from r. The result is kept
// in whole cents inside the band, so value/purchase always lands in
// [Low, High) after rounding.
func CouponValue(purchase decimal.Decimal, couponType string, r *RNG) decimal.Decimal {
	band := BandFor(couponType)
	pct := band.Low + r.Next()*(band.High-band.Low)
	if !purchase.IsPositive() {
		return decimal.Zero
	}

	value := Round2(purchase.Mul(decimal.NewFromFloat(pct)))

	floor := purchase.Mul(decimal.NewFromFloat(band.Low)).Mul(hundred).Ceil().Div(hundred)
	ceilExclusive := purchase.Mul(decimal.NewFromFloat(band.High))
	if value.LessThan(floor) {
		value = floor
	}
	if value.GreaterThanOrEqual(ceilExclusive) {
		value = ceilExclusive.Mul(hundred).Ceil().Sub(decimal.NewFromInt(1)).Div(hundred)
	}
	return value
}

// Payback is 13% of the coupon when there is one, otherwise 7% of the
// purchase, otherwise zero.
func Payback(coupon, purchase decimal.Decimal) decimal.Decimal {
	if coupon.IsPositive() {
		return Round2(coupon.Mul(paybackCouponRate))
	}
	if purchase.IsPositive() {
		return Round2(purchase.Mul(paybackPurchaseRate))
	}
	return decimal.Zero
}
