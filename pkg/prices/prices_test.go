package prices

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"24.99", "24.99"},
		{"$24.99", "24.99"},
		{"24.99 USD", "24.99"},
		{"USD 1,024.50", "1024.50"},
		{".99", "0.99"},
		{"12.34.56", "12.34"},
		{"free", "0"},
		{"", "0"},
	}

	for _, tt := range tests {
		got := Parse(tt.in)
		want := decimal.RequireFromString(tt.want)
		if !got.Equal(want) {
			t.Fatalf("Parse(%q) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestRawUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		present bool
	}{
		{name: "number", in: `19.5`, want: "19.5", present: true},
		{name: "integer", in: `30`, want: "30", present: true},
		{name: "currency string", in: `"$12.00"`, want: "12", present: true},
		{name: "null", in: `null`, want: "0", present: false},
		{name: "zero", in: `0`, want: "0", present: false},
		{name: "garbage string", in: `"n/a"`, want: "0", present: false},
		{name: "object", in: `{"amount": 3}`, want: "0", present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Raw
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !r.Decimal().Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("value = %s, want %s", r.Decimal(), tt.want)
			}
			if r.Present() != tt.present {
				t.Fatalf("present = %v, want %v", r.Present(), tt.present)
			}
		})
	}
}

func TestRawInsideStruct(t *testing.T) {
	payload := `{"original_price": "35.00", "discount_price": null}`
	var dst struct {
		OriginalPrice Raw `json:"original_price"`
		DiscountPrice Raw `json:"discount_price"`
	}
	if err := json.Unmarshal([]byte(payload), &dst); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !dst.OriginalPrice.Present() {
		t.Fatalf("expected original price present")
	}
	if dst.DiscountPrice.Present() {
		t.Fatalf("expected discount price absent")
	}
}
