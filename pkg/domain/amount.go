package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Amount is a price or total in whole currency units.
type Amount int64

// ParseAmountText strips every non-digit character (currency symbols,
// thousands separators, decimal points) and reads what remains as an integer.
// Text with no digits yields zero.
func ParseAmountText(raw string) Amount {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return Amount(v)
}

// FlexibleAmount decodes a JSON price that may be either a number or a
// formatted string such as "₹1,299". Numbers are rounded to the nearest unit.
type FlexibleAmount struct {
	Amount Amount
	Set    bool
}

func (f *FlexibleAmount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.Amount = Amount(math.Round(n))
		f.Set = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	f.Amount = ParseAmountText(s)
	f.Set = true
	return nil
}
