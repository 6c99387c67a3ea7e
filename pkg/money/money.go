// Package money formats and parses prices held as integer minor units.
//
//	f, _ := money.New("fr-FR", "XOF", "F CFA")
//	f.Format(254000) // "254 000 F CFA"
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrInvalidAmount is returned by Parse for malformed or negative input.
var ErrInvalidAmount = errors.New("money: invalid amount")

// Formatter renders minor-unit amounts for one locale and currency. The zero
// value is not usable; build one with New.
type Formatter struct {
	printer     *message.Printer
	unit        currency.Unit
	scale       int
	symbol      string
	symbolFirst bool
}

// New builds a Formatter. symbol may be empty, in which case the ISO code is
// used.
func New(locale, iso, symbol string) (Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("money: locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(iso)
	if err != nil {
		return Formatter{}, fmt.Errorf("money: currency %q: %w", iso, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	if symbol == "" {
		symbol = unit.String()
	}

	base, _ := tag.Base()
	return Formatter{
		printer:     message.NewPrinter(tag),
		unit:        unit,
		scale:       scale,
		symbol:      symbol,
		symbolFirst: base.String() == "en",
	}, nil
}

// MustNew is New that panics on error. Intended for package-level defaults.
func MustNew(locale, iso, symbol string) Formatter {
	f, err := New(locale, iso, symbol)
	if err != nil {
		panic(err)
	}
	return f
}

// Currency returns the ISO currency unit.
func (f Formatter) Currency() currency.Unit { return f.unit }

// Scale returns the number of minor-unit digits (0 for XOF, 2 for EUR).
func (f Formatter) Scale() int { return f.scale }

// Format renders minor with locale digit grouping and the currency symbol.
// Locale grouping spaces are emitted as plain ASCII spaces.
func (f Formatter) Format(minor int64) string {
	var digits string
	if f.scale == 0 {
		digits = f.printer.Sprint(number.Decimal(minor))
	} else {
		major := decimal.New(minor, int32(-f.scale)).InexactFloat64()
		digits = f.printer.Sprint(number.Decimal(major, number.Scale(f.scale)))
	}
	digits = normalizeSpaces(digits)

	if f.symbolFirst {
		return f.symbol + digits
	}
	return digits + " " + f.symbol
}

// Parse converts a major-unit string such as "12.50" into minor units.
// Negative values, precision beyond the currency scale and amounts that do
// not fit in int64 minor units are rejected.
func (f Formatter) Parse(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative %q", ErrInvalidAmount, s)
	}

	shifted := d.Shift(int32(f.scale))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, f.scale)
	}
	if !shifted.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}
	return shifted.IntPart(), nil
}

func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}
