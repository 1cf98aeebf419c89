package domain

// ShipmentExtraction is the flat record of shipment fields pulled out of
// the uploaded documents. Every field is independently optional; a nil
// pointer is the single absent state and serializes as JSON null.
type ShipmentExtraction struct {
	ShipmentID       *string  `json:"shipment_id"`
	Shipper          *string  `json:"shipper"`
	Consignee        *string  `json:"consignee"`
	PickupDatetime   *string  `json:"pickup_datetime"`
	DeliveryDatetime *string  `json:"delivery_datetime"`
	EquipmentType    *string  `json:"equipment_type"`
	Mode             *string  `json:"mode"`
	Rate             *float64 `json:"rate"`
	Currency         *string  `json:"currency"`
	Weight           *string  `json:"weight"`
	CarrierName      *string  `json:"carrier_name"`
}

// EmptyShipmentExtraction is the fallback record: schema-valid with every
// field absent. Returned when extraction cannot be completed reliably.
func EmptyShipmentExtraction() ShipmentExtraction {
	return ShipmentExtraction{}
}
