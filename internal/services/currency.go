package services

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RevenueFormatter renders amounts as "<symbol> <number>" using the locale's
// digit grouping and the currency's standard number of decimals.
type RevenueFormatter struct {
	unit    currency.Unit
	tag     language.Tag
	printer *message.Printer
	symbol  string
	scale   int
}

// NewRevenueFormatter builds a formatter for an ISO 4217 code and a BCP 47
// locale such as "es-CO".
func NewRevenueFormatter(code, locale string) (*RevenueFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)

	return &RevenueFormatter{
		unit:    unit,
		tag:     tag,
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
		scale:   scale,
	}, nil
}

// Format renders amount.
func (f *RevenueFormatter) Format(amount float64) string {
	return f.symbol + " " + f.printer.Sprint(number.Decimal(amount, number.Scale(f.scale)))
}

// Currency returns the ISO code.
func (f *RevenueFormatter) Currency() string {
	return f.unit.String()
}

// Locale returns the BCP 47 locale tag.
func (f *RevenueFormatter) Locale() string {
	return f.tag.String()
}
