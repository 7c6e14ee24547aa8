package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// TracePayload is the JSON document embedded in a lot's QR code at reception.
type TracePayload struct {
	LotNumber   string          `json:"lotNumber"`
	Origin      string          `json:"origin"`
	Date        time.Time       `json:"date"`
	ProductType string          `json:"productType"`
	Quantity    decimal.Decimal `json:"quantity"`
	Controls    TraceControls   `json:"controls"`
}

// TraceControls records the reception control outcomes inside the QR payload.
type TraceControls struct {
	Visual      bool            `json:"visual"`
	Smell       bool            `json:"smell"`
	Temperature decimal.Decimal `json:"temperature"`
	ColdChain   bool            `json:"coldChain"`
}

// FinalPayload is the JSON document embedded in the final QR code at packaging.
type FinalPayload struct {
	LotNumber      string          `json:"lotNumber"`
	PackagingDate  time.Time       `json:"packagingDate"`
	ProductType    string          `json:"productType"`
	Quantity       decimal.Decimal `json:"quantity"`
	BestBeforeDate time.Time       `json:"bestBeforeDate"`
	PackagingType  string          `json:"packagingType"`
}

// NewLotNumber issues a unique lot number.
func NewLotNumber() string {
	return newNumber("LOT")
}

// NewOrderNumber issues a unique order number.
func NewOrderNumber() string {
	return newNumber("ORD")
}

// NewShippingNumber issues a unique shipping number.
func NewShippingNumber() string {
	return newNumber("SHIP")
}

func newNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

// EncodeDataURL marshals the payload to JSON and returns the scannable code as
// a base64 PNG data URL, mirroring what label printers on the floor consume.
func EncodeDataURL(payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal QR payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
