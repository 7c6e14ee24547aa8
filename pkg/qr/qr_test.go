package qr

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNumberFormats(t *testing.T) {
	cases := []struct {
		gen    func() string
		prefix string
	}{
		{NewLotNumber, "LOT-"},
		{NewOrderNumber, "ORD-"},
		{NewShippingNumber, "SHIP-"},
	}
	for _, tc := range cases {
		number := tc.gen()
		if !strings.HasPrefix(number, tc.prefix) {
			t.Errorf("number %q should start with %q", number, tc.prefix)
		}
		parts := strings.Split(number, "-")
		if len(parts) != 3 {
			t.Errorf("number %q should have three segments", number)
			continue
		}
		if len(parts[2]) != 6 {
			t.Errorf("number %q suffix should be 6 characters", number)
		}
		if parts[2] != strings.ToUpper(parts[2]) {
			t.Errorf("number %q suffix should be uppercase", number)
		}
	}
}

func TestNumbersAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := NewLotNumber()
		if seen[number] {
			t.Fatalf("duplicate lot number issued: %s", number)
		}
		seen[number] = true
	}
}

func TestEncodeDataURL(t *testing.T) {
	url, err := EncodeDataURL(TracePayload{
		LotNumber:   "LOT-1700000000000-ABCDEF",
		Origin:      "Quinta do Norte",
		Date:        time.Now(),
		ProductType: "beef",
		Quantity:    decimal.NewFromInt(120),
		Controls: TraceControls{
			Visual:      true,
			Smell:       true,
			Temperature: decimal.NewFromFloat(2.1),
			ColdChain:   true,
		},
	})
	if err != nil {
		t.Fatalf("EncodeDataURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("data URL should carry the PNG prefix, got %q", url[:30])
	}
	if len(url) < 100 {
		t.Errorf("data URL suspiciously short: %d bytes", len(url))
	}
}

func TestEncodeDataURLFinalPayload(t *testing.T) {
	url, err := EncodeDataURL(FinalPayload{
		LotNumber:      "LOT-1700000000000-ABCDEF",
		PackagingDate:  time.Now(),
		ProductType:    "pork",
		Quantity:       decimal.NewFromInt(45),
		BestBeforeDate: time.Now().AddDate(0, 0, 21),
		PackagingType:  "vacuum",
	})
	if err != nil {
		t.Fatalf("EncodeDataURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("data URL should carry the PNG prefix, got %q", url[:30])
	}
}
