package order

import "time"

// OrderPlacedEvent is emitted after an order has been written.
type OrderPlacedEvent struct {
	OrderID    string    `json:"order_id"`
	Username   string    `json:"username"`
	GarmentID  string    `json:"garment_id"`
	Garment    string    `json:"garment"`
	Size       string    `json:"size"`
	PriceCents int64     `json:"price_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:    o.ID,
		Username:   o.Username,
		GarmentID:  o.Garment.ID,
		Garment:    o.Garment.Name,
		Size:       o.Size,
		PriceCents: int64(o.Garment.Price),
		OccurredAt: time.Now().UTC(),
	}
}
