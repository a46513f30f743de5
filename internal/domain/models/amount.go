package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money or rate value as sent by the backend. The backend mixes
// JSON numbers and numeric strings; null, "" and unparsable input decode as zero.
type Amount struct {
	decimal.Decimal
}

func NewAmount(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

// ParseAmount is lenient: anything that is not a number becomes zero.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return Amount{d}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = ParseAmount(string(b))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.StringFixed(2))), nil
}

func (a Amount) Float() float64 {
	return a.InexactFloat64()
}

func (a Amount) Positive() bool {
	return a.Decimal.IsPositive()
}

// FlexString accepts a JSON string or number, e.g. loan ids that are
// sometimes "LN-0001" and sometimes 17.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(b))
	return nil
}

func (f FlexString) String() string { return string(f) }
