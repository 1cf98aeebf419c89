package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/haulware/loadlens/internal/domain"
)

// parseShipment turns raw generator output into a validated record.
// It strips documentation-style code fences the model may wrap the JSON
// in despite being told not to, decodes the object, coerces field types
// and drops unknown keys. Any failure is returned to the single call
// site that maps it to the fallback record.
func parseShipment(raw string) (domain.ShipmentExtraction, error) {
	payload := stripFences(raw)

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return domain.ShipmentExtraction{}, fmt.Errorf("decode extraction output: %w", err)
	}

	var rec domain.ShipmentExtraction
	for key, value := range fields {
		if value == nil {
			continue
		}
		var err error
		switch key {
		case "shipment_id":
			rec.ShipmentID, err = coerceText(key, value)
		case "shipper":
			rec.Shipper, err = coerceText(key, value)
		case "consignee":
			rec.Consignee, err = coerceText(key, value)
		case "pickup_datetime":
			rec.PickupDatetime, err = coerceText(key, value)
		case "delivery_datetime":
			rec.DeliveryDatetime, err = coerceText(key, value)
		case "equipment_type":
			rec.EquipmentType, err = coerceText(key, value)
		case "mode":
			rec.Mode, err = coerceText(key, value)
		case "rate":
			rec.Rate, err = coerceRate(value)
		case "currency":
			rec.Currency, err = coerceText(key, value)
		case "weight":
			rec.Weight, err = coerceText(key, value)
		case "carrier_name":
			rec.CarrierName, err = coerceText(key, value)
		default:
			// Unknown keys are dropped, not errors.
		}
		if err != nil {
			return domain.ShipmentExtraction{}, err
		}
	}
	return rec, nil
}

// stripFences extracts the payload from markdown code fences: a
// json-tagged fence wins, any fence is second choice, raw text last.
func stripFences(raw string) string {
	if _, after, ok := strings.Cut(raw, "```json"); ok {
		if body, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(body)
		}
		return strings.TrimSpace(after)
	}
	if _, after, ok := strings.Cut(raw, "```"); ok {
		if body, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(body)
		}
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(raw)
}

// coerceText accepts any scalar and renders it as text.
func coerceText(key string, value any) (*string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return &v, nil
	case json.Number:
		s := v.String()
		return &s, nil
	case bool:
		s := strconv.FormatBool(v)
		return &s, nil
	default:
		return nil, fmt.Errorf("field %s: cannot coerce %T to text", key, value)
	}
}

// coerceRate accepts a JSON number or a numeric string, tolerating
// currency symbols and thousands separators the model failed to strip.
func coerceRate(value any) (*float64, error) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("field rate: %w", err)
		}
		return &f, nil
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil, fmt.Errorf("field rate: cannot coerce %q to a number", v)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("field rate: cannot coerce %T to a number", value)
	}
}
