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
	"fmt"
	"strings"
	"sync"
	"time"
)

// HourWindow is the inclusive range of opening hours for a category.
type HourWindow struct {
	Open  int
	Close int
}

// DefaultHourWindow applies to categories without a dedicated window.
var DefaultHourWindow = HourWindow{Open: 9, Close: 19}

var hourWindows = map[string]HourWindow{
	"Restaurante":                     {11, 22},
	"Esporte & Fitness":               {6, 23},
	"Supermercado & Conveniência":     {8, 22},
	"Papelaria":                       {9, 21},
	"Livraria":                        {9, 21},
	"Farmácia":                        {8, 22},
	"Moda":                            {10, 22},
	"Eletro & Móveis":                 {10, 22},
	"Cafeteria":                       {7, 22},
	"Saúde":                           {7, 20},
	"Clínicas Médicas e Laboratórios": {7, 20},
	"Clube / Cultura & Esporte":       {8, 23},
}

// HourWindowFor returns the opening window for a category. Lookup is exact.
func HourWindowFor(category string) HourWindow {
	if w, ok := hourWindows[category]; ok {
		return w
	}
	return DefaultHourWindow
}

// SampleHourMinute draws an hour in the category window and a minute in
// [0,60). The hour is drawn first.
func SampleHourMinute(category string, r *RNG) (hour, minute int) {
	w := HourWindowFor(category)
	hour = r.IntBetween(w.Open, w.Close)
	minute = SampleMinute(r)
	return hour, minute
}

// SampleMinute draws a minute in [0,60).
func SampleMinute(r *RNG) int {
	return min(59, int(r.Next()*60))
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SampleDateInRange draws a month in [monthStart, monthEnd] and then a day
// bounded by that month's real length. The result is midnight UTC.
func SampleDateInRange(year, monthStart, monthEnd int, r *RNG) time.Time {
	month := time.Month(r.IntBetween(monthStart, monthEnd))
	day := r.IntBetween(1, DaysIn(year, month))
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateInLastNDays returns a calendar date between now-days and now.
func DateInLastNDays(days int, now time.Time, r *RNG) time.Time {
	if days < 0 {
		days = 0
	}
	back := r.IntBetween(0, days)
	return StartOfDay(now).AddDate(0, 0, -back)
}

// StartOfDay truncates t to its calendar date in UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatHM renders a 24-hour HH:MM time.
func FormatHM(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ToISODate converts DD/MM/YYYY to YYYY-MM-DD. Input that does not parse
// is returned unchanged.
func ToISODate(s string) string {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format(time.DateOnly)
}

var (
	captureZoneOnce sync.Once
	captureZone     *time.Location
)

// CaptureLocation returns the America/Sao_Paulo zone, or a fixed UTC-3 zone
// when tzdata is not available.
func CaptureLocation() *time.Location {
	captureZoneOnce.Do(func() {
		loc, err := time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			loc = time.FixedZone("BRT", -3*60*60)
		}
		captureZone = loc
	})
	return captureZone
}

// ParseCaptureTimestamp combines a DD/MM/YYYY date and an HH:MM time into a
// timestamp in the capture zone.
func ParseCaptureTimestamp(date, hm string) (time.Time, error) {
	t, err := time.ParseInLocation("02/01/2006 15:04",
		strings.TrimSpace(date)+" "+strings.TrimSpace(hm), CaptureLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid capture timestamp %q %q: %w", date, hm, err)
	}
	return t, nil
}
