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
	"strconv"
	"strings"
	"unicode"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
)

// CepToInt strips every non-digit from a CEP and parses what remains.
func CepToInt(cep string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cep)
	if digits == "" {
		return 0, errs.Validation("CEP %q has no digits", cep)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, errs.Validation("CEP %q: %v", cep, err)
	}
	return n, nil
}

// IntToCep zero-pads n to 8 digits and formats it as NNNNN-NNN.
func IntToCep(n int) string {
	s := fmt.Sprintf("%08d", n)
	return s[:5] + "-" + s[5:]
}

// RandomCep draws a CEP uniformly from the inclusive range [low, high].
func RandomCep(low, high string, r *RNG) (string, error) {
	lo, err := CepToInt(low)
	if err != nil {
		return "", err
	}
	hi, err := CepToInt(high)
	if err != nil {
		return "", err
	}
	if hi < lo {
		return "", errs.Validation("CEP range %s..%s is inverted", low, high)
	}
	return IntToCep(r.IntBetween(lo, hi)), nil
}
