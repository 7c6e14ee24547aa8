package lifecycle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smartfactory/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&model.Lot{},
		&model.Reception{},
		&model.Cutting{},
		&model.QualityControl{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestLot(t *testing.T, db *gorm.DB, status model.LotStatus) *model.Lot {
	t.Helper()
	lot := &model.Lot{
		LotNumber:   fmt.Sprintf("LOT-TEST-%s-%d", status, len(status)),
		QRCode:      fmt.Sprintf("data:image/png;base64,%s", status),
		ProductType: "beef",
		Quantity:    decimal.NewFromInt(100),
		Unit:        "kg",
		Status:      status,
	}
	if err := db.Create(lot).Error; err != nil {
		t.Fatalf("failed to create test lot: %v", err)
	}
	return lot
}

func TestTransitionValidMove(t *testing.T) {
	db := openTestDB(t)
	lot := createTestLot(t, db, model.LotStatusPackaging)

	updated, err := Transition(db, lot.ID, model.LotStatusStorage, nil)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.Status != model.LotStatusStorage {
		t.Errorf("status = %s, want storage", updated.Status)
	}

	var reloaded model.Lot
	if err := db.First(&reloaded, lot.ID).Error; err != nil {
		t.Fatalf("failed to reload lot: %v", err)
	}
	if reloaded.Status != model.LotStatusStorage {
		t.Errorf("persisted status = %s, want storage", reloaded.Status)
	}
}

func TestTransitionInvalidMove(t *testing.T) {
	db := openTestDB(t)
	lot := createTestLot(t, db, model.LotStatusReceived)

	_, err := Transition(db, lot.ID, model.LotStatusShipped, nil)
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if invalid.Current != model.LotStatusReceived || invalid.Requested != model.LotStatusShipped {
		t.Errorf("unexpected error detail: %v", invalid)
	}

	var reloaded model.Lot
	db.First(&reloaded, lot.ID)
	if reloaded.Status != model.LotStatusReceived {
		t.Errorf("status changed on rejected transition: %s", reloaded.Status)
	}
}

func TestTransitionMissingLot(t *testing.T) {
	db := openTestDB(t)

	_, err := Transition(db, 9999, model.LotStatusCutting, nil)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if HTTPStatus(err) != 404 {
		t.Errorf("HTTPStatus = %d, want 404", HTTPStatus(err))
	}
}

func TestTransitionStageFailureRollsBack(t *testing.T) {
	db := openTestDB(t)
	lot := createTestLot(t, db, model.LotStatusStorage)

	stageErr := errors.New("stage record refused")
	_, err := Transition(db, lot.ID, model.LotStatusShipped, func(tx *gorm.DB, lot *model.Lot) error {
		return stageErr
	})
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected stage error, got %v", err)
	}

	var reloaded model.Lot
	db.First(&reloaded, lot.ID)
	if reloaded.Status != model.LotStatusStorage {
		t.Errorf("status changed despite stage failure: %s", reloaded.Status)
	}
	if reloaded.CompletedAt != nil {
		t.Error("completed_at set despite rollback")
	}
}

func TestTransitionToShippedStampsCompletion(t *testing.T) {
	db := openTestDB(t)
	lot := createTestLot(t, db, model.LotStatusStorage)

	updated, err := Transition(db, lot.ID, model.LotStatusShipped, nil)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Error("completed_at not set on shipped lot")
	}
}

func TestSelfTransitionWithinTransformation(t *testing.T) {
	db := openTestDB(t)
	lot := createTestLot(t, db, model.LotStatusGrinding)

	if _, err := Transition(db, lot.ID, model.LotStatusGrinding, nil); err != nil {
		t.Fatalf("repeat grinding rejected: %v", err)
	}
	if _, err := Transition(db, lot.ID, model.LotStatusSeasoning, nil); err != nil {
		t.Fatalf("grinding to seasoning rejected: %v", err)
	}
	if _, err := Transition(db, lot.ID, model.LotStatusSeasoning, nil); err != nil {
		t.Fatalf("repeat seasoning rejected: %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&NotFoundError{Entity: "lot", ID: 1}, 404},
		{&InvalidStateError{LotID: 1, Current: model.LotStatusShipped, Requested: model.LotStatusStorage}, 400},
		{&PreconditionError{Failed: []string{"hand_washing"}}, 400},
		{&ValidationError{Reason: "bad input"}, 400},
		{errors.New("database exploded"), 500},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
