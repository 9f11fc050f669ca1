package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceTable is the fixed per-class ticket price.
type PriceTable map[SeatClass]decimal.Decimal

func DefaultPrices() PriceTable {
	return PriceTable{
		SeatClassEconomy:  decimal.RequireFromString("100.00"),
		SeatClassBusiness: decimal.RequireFromString("250.00"),
		SeatClassFirst:    decimal.RequireFromString("500.00"),
	}
}

// NewPriceTable overlays configured prices on the defaults.
func NewPriceTable(overrides map[string]string) (PriceTable, error) {
	prices := DefaultPrices()
	for class, raw := range overrides {
		c := SeatClass(class)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown seat class %q", class)
		}
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("price for %s: %w", class, err)
		}
		if p.IsNegative() {
			return nil, fmt.Errorf("price for %s must not be negative", class)
		}
		prices[c] = p.Round(2)
	}
	return prices, nil
}

func (p PriceTable) Price(c SeatClass) decimal.Decimal {
	return p[c]
}
