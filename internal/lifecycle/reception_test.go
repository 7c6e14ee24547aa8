package lifecycle

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"smartfactory/internal/model"
)

func receptionInput(visual, smell, coldChain bool) ReceptionInput {
	temp := decimal.NewFromFloat(2.5)
	return ReceptionInput{
		Supplier:           "Quinta do Norte",
		ProductType:        "pork",
		Quantity:           decimal.NewFromInt(250),
		VisualControl:      visual,
		SmellControl:       smell,
		TemperatureControl: &temp,
		ColdChainVerified:  coldChain,
	}
}

func TestAcceptReceptionCreatesLot(t *testing.T) {
	db := openTestDB(t)

	result, err := AcceptReception(db, receptionInput(true, true, true), 7)
	if err != nil {
		t.Fatalf("AcceptReception failed: %v", err)
	}
	if !result.Accepted {
		t.Fatal("reception with all controls passed should be accepted")
	}
	if result.Reception.Status != model.ReceptionStatusAccepted {
		t.Errorf("reception status = %s, want accepted", result.Reception.Status)
	}
	if result.Lot == nil {
		t.Fatal("accepted reception should create a lot")
	}
	if result.Lot.Status != model.LotStatusReceived {
		t.Errorf("lot status = %s, want received", result.Lot.Status)
	}
	if !strings.HasPrefix(result.Lot.LotNumber, "LOT-") {
		t.Errorf("lot number %q should carry the LOT prefix", result.Lot.LotNumber)
	}
	if !strings.HasPrefix(result.Lot.QRCode, "data:image/png;base64,") {
		t.Errorf("QR code should be a PNG data URL, got %q", result.Lot.QRCode[:30])
	}
	if result.Lot.Unit != "kg" {
		t.Errorf("empty unit should default to kg, got %q", result.Lot.Unit)
	}

	var controls []model.QualityControl
	db.Where("lot_id = ?", result.Lot.ID).Find(&controls)
	if len(controls) != 1 {
		t.Fatalf("expected 1 quality control, got %d", len(controls))
	}
	if controls[0].CheckType != model.CheckTypeMaterialReception || controls[0].Status != model.QCStatusPassed {
		t.Errorf("unexpected initial control: %s/%s", controls[0].CheckType, controls[0].Status)
	}
	if controls[0].CheckedBy != 7 {
		t.Errorf("checked_by = %d, want 7", controls[0].CheckedBy)
	}
}

func TestRejectedReceptionCreatesNoLot(t *testing.T) {
	cases := []struct {
		name                      string
		visual, smell, coldChain bool
	}{
		{"visual failed", false, true, true},
		{"smell failed", true, false, true},
		{"cold chain failed", true, true, false},
		{"all failed", false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t)

			result, err := AcceptReception(db, receptionInput(tc.visual, tc.smell, tc.coldChain), 7)
			if err != nil {
				t.Fatalf("AcceptReception failed: %v", err)
			}
			if result.Accepted {
				t.Fatal("reception should be rejected")
			}
			if result.Reception.Status != model.ReceptionStatusRejected {
				t.Errorf("reception status = %s, want rejected", result.Reception.Status)
			}
			if result.Lot != nil {
				t.Error("rejected reception must not create a lot")
			}

			var lotCount int64
			db.Model(&model.Lot{}).Count(&lotCount)
			if lotCount != 0 {
				t.Errorf("lot count = %d, want 0", lotCount)
			}
		})
	}
}
