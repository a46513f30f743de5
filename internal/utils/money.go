package utils

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencyFormatter renders amounts with the locale's grouping and exactly two
// fraction digits, prefixed by the currency's narrow symbol.
type CurrencyFormatter struct {
	printer *message.Printer
	symbol  string
}

func NewCurrencyFormatter(locale, code string) CurrencyFormatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.AmericanEnglish
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.MustParseISO("PHP")
	}
	p := message.NewPrinter(tag)
	return CurrencyFormatter{printer: p, symbol: p.Sprint(currency.NarrowSymbol(unit))}
}

func (f CurrencyFormatter) Format(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatString is lenient: empty or malformed input formats as zero.
func (f CurrencyFormatter) FormatString(raw string) string {
	return f.Format(ParseDecimal(raw))
}

// ParseDecimal strips grouping commas; anything unparsable is zero.
func ParseDecimal(raw string) decimal.Decimal {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var (
	defaultMu        sync.RWMutex
	defaultFormatter = NewCurrencyFormatter("en-US", "PHP")
)

// SetDefaultCurrency configures FormatCurrency, normally from LOCALE/CURRENCY.
func SetDefaultCurrency(locale, code string) {
	f := NewCurrencyFormatter(locale, code)
	defaultMu.Lock()
	defaultFormatter = f
	defaultMu.Unlock()
}

func FormatCurrency(d decimal.Decimal) string {
	defaultMu.RLock()
	f := defaultFormatter
	defaultMu.RUnlock()
	return f.Format(d)
}

// FormatMoney is the plain "1234.50" form used in exports.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
