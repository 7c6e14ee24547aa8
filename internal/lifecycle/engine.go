// Package lifecycle owns Lot.status and the chain-of-custody rules around it.
// Every stage recorder goes through Transition, which validates the move
// against the transition table and applies the stage record and the status
// change in one transaction under a per-lot critical section.
package lifecycle

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"smartfactory/internal/model"
)

// StageFunc creates the stage record for a transition. It runs inside the
// transaction; returning an error rolls back both the record and the status
// change.
type StageFunc func(tx *gorm.DB, lot *model.Lot) error

// Transition moves the lot to the target status after validating the current
// status against the transition table. The stage callback and the lot update
// either both commit or both roll back.
func Transition(db *gorm.DB, lotID uint, to model.LotStatus, stage StageFunc) (*model.Lot, error) {
	unlock := lockLot(lotID)
	defer unlock()

	var lot model.Lot
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "lot", ID: lotID}
			}
			return err
		}

		if !CanTransition(lot.Status, to) {
			return &InvalidStateError{LotID: lot.ID, Current: lot.Status, Requested: to}
		}

		if stage != nil {
			if err := stage(tx, &lot); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": to}
		if to == model.LotStatusShipped {
			now := time.Now()
			updates["completed_at"] = now
			lot.CompletedAt = &now
		}
		if err := tx.Model(&model.Lot{}).Where("id = ?", lot.ID).Updates(updates).Error; err != nil {
			return err
		}
		lot.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// FindLot loads a lot by id, translating a missing row into a NotFoundError.
func FindLot(db *gorm.DB, lotID uint) (*model.Lot, error) {
	var lot model.Lot
	if err := db.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "lot", ID: lotID}
		}
		return nil, err
	}
	return &lot, nil
}
