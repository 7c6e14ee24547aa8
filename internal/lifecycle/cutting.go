package lifecycle

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartfactory/internal/model"
	"smartfactory/pkg/logger"

	"go.uber.org/zap"
)

// HygieneCheck is one boolean item of a stage's hygiene checklist. Every
// checked item yields a QualityControl audit row, whatever its outcome.
type HygieneCheck struct {
	CheckType string
	Passed    bool
}

// CuttingInput is a request to start a cutting run on a lot.
type CuttingInput struct {
	LotID             uint
	InputQuantity     decimal.Decimal
	HandWashing       bool
	KnifeDisinfection bool
	EquipmentWorn     bool
	SurfaceCleaned    bool
	Notes             string
}

// cuttingChecklist maps the four cutting hygiene booleans onto their audit
// check types.
func cuttingChecklist(in CuttingInput) []HygieneCheck {
	return []HygieneCheck{
		{CheckType: model.CheckTypeHandWashing, Passed: in.HandWashing},
		{CheckType: model.CheckTypeKnifeDisinfection, Passed: in.KnifeDisinfection},
		{CheckType: model.CheckTypeProtectiveEquipment, Passed: in.EquipmentWorn},
		{CheckType: model.CheckTypeSurfaceCleaning, Passed: in.SurfaceCleaned},
	}
}

// auditHygiene writes one QualityControl row per checked item.
func auditHygiene(tx *gorm.DB, lotID, userID uint, checks []HygieneCheck) error {
	now := time.Now()
	for _, check := range checks {
		status := model.QCStatusPassed
		if !check.Passed {
			status = model.QCStatusFailed
		}
		control := &model.QualityControl{
			LotID:     lotID,
			CheckType: check.CheckType,
			Status:    status,
			CheckedBy: userID,
			CheckedAt: now,
		}
		if err := tx.Create(control).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateCutting starts a cutting run. All four hygiene booleans must be true;
// a failed checklist still writes its audit rows but creates no cutting
// record and leaves the lot untouched. On success the cutting record, the
// audit rows and the transition into cutting commit together.
func CreateCutting(db *gorm.DB, in CuttingInput, userID uint) (*model.Cutting, error) {
	checks := cuttingChecklist(in)
	var failed []string
	for _, check := range checks {
		if !check.Passed {
			failed = append(failed, check.CheckType)
		}
	}

	if len(failed) > 0 {
		lot, err := FindLot(db, in.LotID)
		if err != nil {
			return nil, err
		}
		if err := auditHygiene(db, lot.ID, userID, checks); err != nil {
			return nil, err
		}
		return nil, &PreconditionError{Failed: failed}
	}

	var cutting *model.Cutting
	_, err := Transition(db, in.LotID, model.LotStatusCutting, func(tx *gorm.DB, lot *model.Lot) error {
		cutting = &model.Cutting{
			LotID:             lot.ID,
			CuttingDate:       time.Now(),
			HandWashing:       in.HandWashing,
			KnifeDisinfection: in.KnifeDisinfection,
			EquipmentWorn:     in.EquipmentWorn,
			SurfaceCleaned:    in.SurfaceCleaned,
			InputQuantity:     in.InputQuantity,
			Status:            model.CuttingStatusInProgress,
			OperatorID:        userID,
			Notes:             in.Notes,
		}
		if err := tx.Create(cutting).Error; err != nil {
			return err
		}
		return auditHygiene(tx, lot.ID, userID, checks)
	})
	if err != nil {
		return nil, err
	}
	return cutting, nil
}

// CompleteCutting finalizes a cutting run: records the output quantity,
// derives wastage = input - output, marks the record completed and advances
// the lot to grinding, all in one transaction. Negative wastage is accepted
// but flagged.
func CompleteCutting(db *gorm.DB, cuttingID uint, output decimal.Decimal) (*model.Cutting, error) {
	var ref model.Cutting
	if err := db.Select("id", "lot_id").First(&ref, cuttingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cutting", ID: cuttingID}
		}
		return nil, err
	}

	// The in-progress check runs inside the transition so that two
	// concurrent completions cannot both pass it.
	var cutting model.Cutting
	_, err := Transition(db, ref.LotID, model.LotStatusGrinding, func(tx *gorm.DB, lot *model.Lot) error {
		if err := tx.First(&cutting, cuttingID).Error; err != nil {
			return err
		}
		if cutting.Status != model.CuttingStatusInProgress {
			return &ValidationError{Reason: "cutting record is not in progress"}
		}

		wastage := cutting.InputQuantity.Sub(output)
		if wastage.IsNegative() {
			logger.GetLogger().Warn("Negative wastage recorded on cutting completion",
				zap.Uint("cutting_id", cutting.ID),
				zap.String("input", cutting.InputQuantity.String()),
				zap.String("output", output.String()))
		}

		updates := map[string]interface{}{
			"output_quantity": output,
			"wastage":         wastage,
			"status":          model.CuttingStatusCompleted,
		}
		if err := tx.Model(&model.Cutting{}).Where("id = ?", cutting.ID).Updates(updates).Error; err != nil {
			return err
		}
		cutting.OutputQuantity = &output
		cutting.Wastage = wastage
		cutting.Status = model.CuttingStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cutting, nil
}
