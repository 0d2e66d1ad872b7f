package prices

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.]`)
	leadingNumber = regexp.MustCompile(`^[0-9]*\.?[0-9]+`)
)

// Raw is a price exactly as the catalog service sends it: a JSON number, a
// currency-formatted string, or null. It normalizes to a decimal once, at the
// boundary, and never fails to unmarshal.
type Raw struct {
	value   decimal.Decimal
	present bool
}

// FromDecimal builds a Raw around an already-normalized value.
func FromDecimal(d decimal.Decimal) Raw {
	return Raw{value: d, present: true}
}

// FromString builds a Raw from a currency-formatted string.
func FromString(s string) Raw {
	return Raw{value: Parse(s), present: true}
}

func (r *Raw) UnmarshalJSON(data []byte) error {
	*r = Raw{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		r.value = Parse(s)
		r.present = true
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		// Booleans, objects, arrays: treat as absent rather than reject.
		return nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil
	}
	r.value = d
	r.present = true
	return nil
}

// Decimal returns the normalized value, zero when absent.
func (r Raw) Decimal() decimal.Decimal {
	return r.value
}

// Present reports whether a usable, non-zero price was supplied.
func (r Raw) Present() bool {
	return r.present && !r.value.IsZero()
}

// Parse extracts a decimal amount from a currency-formatted string. Currency
// symbols, separators and trailing text are dropped; anything without a
// leading numeric run parses to zero.
func Parse(s string) decimal.Decimal {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	match := leadingNumber.FindString(cleaned)
	if match == "" {
		return decimal.Zero
	}
	if strings.HasPrefix(match, ".") {
		match = "0" + match
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero
	}
	return d
}
