package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smartfactory/internal/model"
	"smartfactory/pkg/config"
	"smartfactory/pkg/database"
	"smartfactory/pkg/jwtutil"
	"smartfactory/prometheus"
)

func TestMain(m *testing.M) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 1})
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "handlertest"}})
	os.Exit(m.Run())
}

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.Reception{},
		&model.Lot{},
		&model.Cutting{},
		&model.Production{},
		&model.Packaging{},
		&model.QualityControl{},
		&model.Order{},
		&model.Shipping{},
		&model.Machine{},
		&model.Intervention{},
		&model.IoTSensor{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db
}

// request runs a handler against a JSON body and returns the recorder.
func request(t *testing.T, handlerFunc echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint(1))
	c.Set("role", model.RoleAdmin)
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for name, value := range params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := handlerFunc(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestFullLotFlow(t *testing.T) {
	setupDB(t)

	// Accepted reception creates the lot.
	rec := request(t, CreateReception, http.MethodPost, "/api/receptions",
		`{"supplier":"Quinta do Norte","product_type":"beef","quantity":"200","visual_control":true,"smell_control":true,"cold_chain_verified":true}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("reception: status = %d, body %s", rec.Code, rec.Body.String())
	}
	lot := decode(t, rec)["lot"].(map[string]interface{})
	lotID := strconv.Itoa(int(lot["id"].(float64)))

	// Cutting with the full hygiene checklist.
	rec = request(t, CreateCutting, http.MethodPost, "/api/cuttings",
		`{"lot_id":`+lotID+`,"input_quantity":"200","hand_washing":true,"knife_disinfection":true,"equipment_worn":true,"surface_cleaned":true}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("cutting: status = %d, body %s", rec.Code, rec.Body.String())
	}
	cuttingID := strconv.Itoa(int(decode(t, rec)["id"].(float64)))

	rec = request(t, CompleteCutting, http.MethodPatch, "/api/cuttings/"+cuttingID+"/complete",
		`{"output_quantity":"180"}`, map[string]string{"id": cuttingID})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete cutting: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Grinding then seasoning.
	rec = request(t, CreateProduction, http.MethodPost, "/api/productions",
		`{"lot_id":`+lotID+`,"operation":"grinding","input_quantity":"180","output_quantity":"178"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("grinding: status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = request(t, CreateProduction, http.MethodPost, "/api/productions",
		`{"lot_id":`+lotID+`,"operation":"seasoning","input_quantity":"178","output_quantity":"178"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seasoning: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Packaging issues the final QR code.
	rec = request(t, CreatePackaging, http.MethodPost, "/api/packagings",
		`{"lot_id":`+lotID+`,"packaging_type":"vacuum","quantity":"178"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("packaging: status = %d, body %s", rec.Code, rec.Body.String())
	}
	packaging := decode(t, rec)
	if !strings.HasPrefix(packaging["qr_code_final"].(string), "data:image/png;base64,") {
		t.Error("final QR code should be a PNG data URL")
	}
	packagingID := strconv.Itoa(int(packaging["id"].(float64)))

	rec = request(t, ReadyPackaging, http.MethodPatch, "/api/packagings/"+packagingID+"/ready",
		"", map[string]string{"id": packagingID})
	if rec.Code != http.StatusOK {
		t.Fatalf("ready packaging: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The lot is now in storage.
	var stored model.Lot
	database.GetDB().First(&stored, lotID)
	if stored.Status != model.LotStatusStorage {
		t.Fatalf("lot status = %s, want storage", stored.Status)
	}

	// Order and shipment close the chain.
	rec = request(t, CreateOrder, http.MethodPost, "/api/orders",
		`{"client_name":"Hotel Mar","client_type":"hotel","product_type":"beef","quantity":"150"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("order: status = %d, body %s", rec.Code, rec.Body.String())
	}
	orderID := strconv.Itoa(int(decode(t, rec)["id"].(float64)))

	rec = request(t, PrepareOrder, http.MethodPatch, "/api/orders/"+orderID+"/prepare",
		`{"lot_ids":[`+lotID+`]}`, map[string]string{"id": orderID})
	if rec.Code != http.StatusOK {
		t.Fatalf("prepare order: status = %d, body %s", rec.Code, rec.Body.String())
	}
	prepared := decode(t, rec)["order"].(map[string]interface{})
	if prepared["status"] != model.OrderStatusReady {
		t.Errorf("prepared order status = %v, want ready", prepared["status"])
	}

	rec = request(t, CreateShipping, http.MethodPost, "/api/shippings",
		`{"order_id":`+orderID+`,"lot_id":`+lotID+`,"quantity":"150"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("shipping: status = %d, body %s", rec.Code, rec.Body.String())
	}

	database.GetDB().First(&stored, lotID)
	if stored.Status != model.LotStatusShipped {
		t.Errorf("lot status = %s, want shipped", stored.Status)
	}
	if stored.CompletedAt == nil {
		t.Error("shipped lot should carry a completion timestamp")
	}

	var order model.Order
	database.GetDB().First(&order, orderID)
	if order.Status != model.OrderStatusShipped {
		t.Errorf("order status = %s, want shipped", order.Status)
	}
}

func TestCreateCuttingHygieneFailure(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateReception, http.MethodPost, "/api/receptions",
		`{"supplier":"Quinta do Norte","product_type":"pork","quantity":"50","visual_control":true,"smell_control":true,"cold_chain_verified":true}`, nil)
	lot := decode(t, rec)["lot"].(map[string]interface{})
	lotID := strconv.Itoa(int(lot["id"].(float64)))

	rec = request(t, CreateCutting, http.MethodPost, "/api/cuttings",
		`{"lot_id":`+lotID+`,"input_quantity":"50","hand_washing":true,"knife_disinfection":false,"equipment_worn":true,"surface_cleaned":true}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}

	var count int64
	database.GetDB().Model(&model.Cutting{}).Count(&count)
	if count != 0 {
		t.Errorf("cutting count = %d, want 0", count)
	}
}

func TestRejectedReceptionResponse(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateReception, http.MethodPost, "/api/receptions",
		`{"supplier":"Quinta do Sul","product_type":"beef","quantity":"80","visual_control":true,"smell_control":false,"cold_chain_verified":true}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if _, hasLot := body["lot"]; hasLot {
		t.Error("rejected reception should not return a lot")
	}
	if body["error"] == nil {
		t.Error("rejection response should carry an error message")
	}
	reception := body["reception"].(map[string]interface{})
	if reception["status"] != string(model.ReceptionStatusRejected) {
		t.Errorf("reception status = %v, want rejected", reception["status"])
	}

	var lotCount int64
	database.GetDB().Model(&model.Lot{}).Count(&lotCount)
	if lotCount != 0 {
		t.Errorf("lot count = %d, want 0", lotCount)
	}
}

func TestPrepareOrderInsufficientStock(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateOrder, http.MethodPost, "/api/orders",
		`{"client_name":"Restaurante Rio","client_type":"restaurant","product_type":"beef","quantity":"500"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("order: status = %d, body %s", rec.Code, rec.Body.String())
	}
	orderID := strconv.Itoa(int(decode(t, rec)["id"].(float64)))

	rec = request(t, PrepareOrder, http.MethodPatch, "/api/orders/"+orderID+"/prepare",
		"", map[string]string{"id": orderID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["error"] == nil {
		t.Error("insufficiency response should carry an error message")
	}

	var order model.Order
	database.GetDB().First(&order, orderID)
	if order.Status != model.OrderStatusConfirmed {
		t.Errorf("order status = %s, want confirmed", order.Status)
	}
}

func TestPrepareOrderRejectsBadLotSelection(t *testing.T) {
	setupDB(t)

	// One stored pork lot; the order asks for beef against it.
	database.GetDB().Create(&model.Lot{
		LotNumber:   "LOT-STORED-PORK",
		QRCode:      "data:image/png;base64,pork",
		ProductType: "pork",
		Quantity:    decimalFromString(t, "300"),
		Status:      model.LotStatusStorage,
	})

	rec := request(t, CreateOrder, http.MethodPost, "/api/orders",
		`{"client_name":"Talho Central","client_type":"butcher","product_type":"beef","quantity":"100"}`, nil)
	orderID := strconv.Itoa(int(decode(t, rec)["id"].(float64)))

	rec = request(t, PrepareOrder, http.MethodPatch, "/api/orders/"+orderID+"/prepare",
		`{"lot_ids":[1]}`, map[string]string{"id": orderID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}

	var order model.Order
	database.GetDB().First(&order, orderID)
	if order.Status == model.OrderStatusReady {
		t.Error("order must not be ready after a rejected preparation")
	}
}

func TestUpdateLotStatusRejectsInvalidMove(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateReception, http.MethodPost, "/api/receptions",
		`{"supplier":"Quinta do Norte","product_type":"beef","quantity":"100","visual_control":true,"smell_control":true,"cold_chain_verified":true}`, nil)
	lot := decode(t, rec)["lot"].(map[string]interface{})
	lotID := strconv.Itoa(int(lot["id"].(float64)))

	rec = request(t, UpdateLotStatus, http.MethodPatch, "/api/lots/"+lotID+"/status",
		`{"status":"shipped"}`, map[string]string{"id": lotID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}

	// Blocking is allowed from any non-terminal state.
	rec = request(t, UpdateLotStatus, http.MethodPatch, "/api/lots/"+lotID+"/status",
		`{"status":"quality_blocked"}`, map[string]string{"id": lotID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestSensorReadingThresholdAlert(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateSensor, http.MethodPost, "/api/iot/sensors",
		`{"sensor_id":"TEMP-001","sensor_name":"Cold room 1","location":"cold_room_1","type":"temperature","unit":"C","min_threshold":"0","max_threshold":"4"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sensor: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = request(t, RecordSensorReading, http.MethodPatch, "/api/iot/sensors/TEMP-001/reading",
		`{"value":"7.5"}`, map[string]string{"sensorId": "TEMP-001"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reading: status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["alert"] != "above_max" {
		t.Errorf("alert = %v, want above_max", body["alert"])
	}

	rec = request(t, RecordSensorReading, http.MethodPatch, "/api/iot/sensors/TEMP-001/reading",
		`{"value":"2.0"}`, map[string]string{"sensorId": "TEMP-001"})
	body = decode(t, rec)
	if body["alert"] != "" {
		t.Errorf("alert = %v, want empty", body["alert"])
	}

	var sensor model.IoTSensor
	database.GetDB().Where("sensor_id = ?", "TEMP-001").First(&sensor)
	if sensor.CurrentValue == nil || !sensor.CurrentValue.Equal(decimalFromString(t, "2.0")) {
		t.Errorf("current_value not updated: %v", sensor.CurrentValue)
	}
	if sensor.LastReadAt == nil {
		t.Error("last_read_at not stamped")
	}
}

func TestCreateLotManually(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateLot, http.MethodPost, "/api/lots",
		`{"product_type":"beef","quantity":"120","origin":"stock takeover","location":"cold_room_2"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if !strings.HasPrefix(body["lot_number"].(string), "LOT-") {
		t.Errorf("lot_number = %v, want LOT- prefix", body["lot_number"])
	}
	if !strings.HasPrefix(body["qr_code"].(string), "data:image/png;base64,") {
		t.Error("manually created lot should carry a QR data URL")
	}
	if body["status"] != string(model.LotStatusReceived) {
		t.Errorf("status = %v, want received", body["status"])
	}

	rec = request(t, CreateLot, http.MethodPost, "/api/lots",
		`{"product_type":"","quantity":"10"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing product_type: status = %d, want 400", rec.Code)
	}
}

func TestUpdateProductionStatus(t *testing.T) {
	setupDB(t)

	lot := model.Lot{
		LotNumber:   "LOT-GRIND-1",
		QRCode:      "data:image/png;base64,grind",
		ProductType: "beef",
		Quantity:    decimalFromString(t, "50"),
		Status:      model.LotStatusGrinding,
	}
	database.GetDB().Create(&lot)

	rec := request(t, CreateProduction, http.MethodPost, "/api/productions",
		`{"lot_id":1,"operation":"grinding","input_quantity":"50","output_quantity":"49"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("production: status = %d, body %s", rec.Code, rec.Body.String())
	}
	productionID := strconv.Itoa(int(decode(t, rec)["id"].(float64)))

	rec = request(t, UpdateProductionStatus, http.MethodPatch, "/api/productions/"+productionID+"/status",
		`{"status":"paused"}`, map[string]string{"id": productionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var production model.Production
	database.GetDB().First(&production, productionID)
	if production.Status != model.ProductionStatusPaused {
		t.Errorf("production status = %s, want paused", production.Status)
	}

	rec = request(t, UpdateProductionStatus, http.MethodPatch, "/api/productions/"+productionID+"/status",
		`{"status":"melting"}`, map[string]string{"id": productionID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: status = %d, want 400", rec.Code)
	}
}

func TestListCuttingsByLot(t *testing.T) {
	setupDB(t)

	for i, number := range []string{"LOT-A", "LOT-B"} {
		lot := model.Lot{
			LotNumber:   number,
			QRCode:      "data:image/png;base64," + number,
			ProductType: "beef",
			Quantity:    decimalFromString(t, "100"),
			Status:      model.LotStatusReceived,
		}
		database.GetDB().Create(&lot)
		rec := request(t, CreateCutting, http.MethodPost, "/api/cuttings",
			`{"lot_id":`+strconv.Itoa(i+1)+`,"input_quantity":"100","hand_washing":true,"knife_disinfection":true,"equipment_worn":true,"surface_cleaned":true}`, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("cutting for %s: status = %d, body %s", number, rec.Code, rec.Body.String())
		}
	}

	rec := request(t, ListCuttings, http.MethodGet, "/api/cuttings?lot_id=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var cuttings []model.Cutting
	if err := json.Unmarshal(rec.Body.Bytes(), &cuttings); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(cuttings) != 1 || cuttings[0].LotID != 2 {
		t.Errorf("filtered list = %d entries, want exactly the lot 2 cutting", len(cuttings))
	}
}

func TestCriticalInterventionSidelinesMachine(t *testing.T) {
	setupDB(t)

	rec := request(t, CreateMachine, http.MethodPost, "/api/machines",
		`{"machine_id":"GRIND-01","machine_name":"Grinder 1","type":"grinder","location":"hall_2"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("machine: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = request(t, CreateIntervention, http.MethodPost, "/api/interventions",
		`{"machine_id":1,"problem_description":"blade jammed","problem_type":"mechanical","severity":"critical"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("intervention: status = %d, body %s", rec.Code, rec.Body.String())
	}

	var machine model.Machine
	database.GetDB().First(&machine, 1)
	if machine.Status != model.MachineStatusMaintenance {
		t.Errorf("machine status = %q, want %q", machine.Status, model.MachineStatusMaintenance)
	}
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return value
}
