package lifecycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartfactory/internal/model"
	"smartfactory/pkg/qr"
)

// ReceptionInput is the raw-material delivery and its four entry controls.
type ReceptionInput struct {
	Supplier             string
	ProductType          string
	Quantity             decimal.Decimal
	Unit                 string
	SlaughterDate        *time.Time
	TransportTemperature *decimal.Decimal
	SanitaryCertificate  string
	VisualControl        bool
	SmellControl         bool
	TemperatureControl   *decimal.Decimal
	ColdChainVerified    bool
	Notes                string
}

// ReceptionResult is the outcome of AcceptReception: either an accepted
// reception with its newly created lot, or a rejected reception and no lot.
type ReceptionResult struct {
	Reception *model.Reception
	Lot       *model.Lot
	Accepted  bool
}

// AcceptReception applies the entry controls to a delivery. When visual,
// smell and cold-chain all pass, it creates the accepted reception, a lot in
// the received state with an issued lot number and QR code, and one passed
// material_reception quality record in a single transaction. Otherwise the
// reception is persisted as rejected and no lot exists.
func AcceptReception(db *gorm.DB, in ReceptionInput, userID uint) (*ReceptionResult, error) {
	now := time.Now()
	reception := &model.Reception{
		ReceptionDate:        now,
		Supplier:             in.Supplier,
		ProductType:          in.ProductType,
		Quantity:             in.Quantity,
		Unit:                 defaultUnit(in.Unit),
		SlaughterDate:        in.SlaughterDate,
		TransportTemperature: in.TransportTemperature,
		SanitaryCertificate:  in.SanitaryCertificate,
		VisualControl:        in.VisualControl,
		SmellControl:         in.SmellControl,
		TemperatureControl:   in.TemperatureControl,
		ColdChainVerified:    in.ColdChainVerified,
		Notes:                in.Notes,
		CheckedBy:            userID,
		CheckedAt:            now,
	}

	accepted := in.VisualControl && in.SmellControl && in.ColdChainVerified
	if !accepted {
		reception.Status = model.ReceptionStatusRejected
		if err := db.Create(reception).Error; err != nil {
			return nil, err
		}
		return &ReceptionResult{Reception: reception, Accepted: false}, nil
	}

	lotNumber := qr.NewLotNumber()
	temperature := decimal.Zero
	if in.TemperatureControl != nil {
		temperature = *in.TemperatureControl
	}
	code, err := qr.EncodeDataURL(qr.TracePayload{
		LotNumber:   lotNumber,
		Origin:      in.Supplier,
		Date:        now,
		ProductType: in.ProductType,
		Quantity:    in.Quantity,
		Controls: qr.TraceControls{
			Visual:      in.VisualControl,
			Smell:       in.SmellControl,
			Temperature: temperature,
			ColdChain:   in.ColdChainVerified,
		},
	})
	if err != nil {
		return nil, err
	}

	reception.Status = model.ReceptionStatusAccepted
	lot := &model.Lot{
		LotNumber:   lotNumber,
		QRCode:      code,
		ProductType: in.ProductType,
		Quantity:    in.Quantity,
		Unit:        defaultUnit(in.Unit),
		Status:      model.LotStatusReceived,
		Temperature: in.TemperatureControl,
		Notes:       fmt.Sprintf("Reception from %s", in.Supplier),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reception).Error; err != nil {
			return err
		}
		if err := tx.Create(lot).Error; err != nil {
			return err
		}
		control := &model.QualityControl{
			LotID:       lot.ID,
			CheckType:   model.CheckTypeMaterialReception,
			Status:      model.QCStatusPassed,
			Temperature: in.TemperatureControl,
			Notes:       "Initial reception check - all controls passed",
			CheckedBy:   userID,
			CheckedAt:   now,
		}
		return tx.Create(control).Error
	})
	if err != nil {
		return nil, err
	}

	return &ReceptionResult{Reception: reception, Lot: lot, Accepted: true}, nil
}

func defaultUnit(unit string) string {
	if unit == "" {
		return "kg"
	}
	return unit
}
