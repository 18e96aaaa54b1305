// Package fx converts amounts between currencies using rates declared
// relative to a single base currency. Conversion is amount / fromRate *
// toRate; the base currency carries rate 1.
package fx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/govalues/decimal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
)

var unknownCurrency = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fx_unknown_currency_total",
	Help: "Conversions that hit a currency code with no declared rate.",
}, []string{"code"})

// Policy decides what happens when a conversion references a currency code
// with no declared rate.
type Policy int

const (
	// PolicyAssumeBase treats an unknown code as rate 1, i.e. at par with
	// the base currency. The fallback is logged and counted, never silent.
	PolicyAssumeBase Policy = iota
	// PolicyReject fails the conversion with ErrUnknownCurrency.
	PolicyReject
)

// Converter holds a static rate table. It is immutable after construction
// and safe for concurrent use.
type Converter struct {
	base   string
	rates  map[string]decimal.Decimal
	policy Policy
	log    *slog.Logger
}

// New builds a converter from declared currencies. The base currency always
// carries rate 1, whether declared or not.
func New(base string, currencies []ledger.Currency, policy Policy, log *slog.Logger) (*Converter, error) {
	base = strings.ToUpper(base)
	if base == "" {
		return nil, fmt.Errorf("%w: base currency required", errs.ErrInvalid)
	}
	rates := map[string]decimal.Decimal{base: decimal.MustNew(1, 0)}
	for _, c := range currencies {
		code := strings.ToUpper(c.Code)
		if c.Base || code == base {
			continue
		}
		rate, err := decimal.Parse(c.Rate)
		if err != nil {
			return nil, fmt.Errorf("%w: rate for %s: %v", errs.ErrInvalid, code, err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("%w: rate for %s must be positive", errs.ErrInvalid, code)
		}
		rates[code] = rate
	}
	return &Converter{base: base, rates: rates, policy: policy, log: log}, nil
}

// Base returns the base currency code.
func (c *Converter) Base() string { return c.base }

// rate resolves one code, applying the unknown-currency policy.
func (c *Converter) rate(code string) (decimal.Decimal, error) {
	if r, ok := c.rates[code]; ok {
		return r, nil
	}
	unknownCurrency.WithLabelValues(code).Inc()
	if c.policy == PolicyReject {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", errs.ErrUnknownCurrency, code)
	}
	if c.log != nil {
		c.log.Warn("unknown currency assumed at par with base",
			"code", code, "base", c.base)
	}
	return decimal.MustNew(1, 0), nil
}

// ConvertMinor converts an amount in minor units of from into minor units
// of to, rounding half-even to a whole minor unit.
func (c *Converter) ConvertMinor(amountMinor int64, from, to string) (int64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amountMinor, nil
	}
	fromRate, err := c.rate(from)
	if err != nil {
		return 0, err
	}
	toRate, err := c.rate(to)
	if err != nil {
		return 0, err
	}
	amount, err := decimal.New(amountMinor, 0)
	if err != nil {
		return 0, err
	}
	scaled, err := amount.Mul(toRate)
	if err != nil {
		return 0, err
	}
	converted, err := scaled.Quo(fromRate)
	if err != nil {
		return 0, err
	}
	whole, _, ok := converted.Round(0).Int64(0)
	if !ok {
		return 0, fmt.Errorf("%w: conversion overflow", errs.ErrInvalid)
	}
	return whole, nil
}

// ToBaseMinor converts an amount into base-currency minor units.
func (c *Converter) ToBaseMinor(amountMinor int64, from string) (int64, error) {
	return c.ConvertMinor(amountMinor, from, c.base)
}
