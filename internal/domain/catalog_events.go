package domain

import "time"

type CatalogEventType string

const (
	EventParkingSpaceCreated CatalogEventType = "parking_space.created"
	EventParkingSpaceUpdated CatalogEventType = "parking_space.updated"
	EventParkingSpaceDeleted CatalogEventType = "parking_space.deleted"
	EventBookingCreated      CatalogEventType = "booking.created"
	EventBookingUpdated      CatalogEventType = "booking.updated"
)

// CatalogEvent được gửi đến frontend qua WebSocket và (nếu cấu hình) lên SQS.
type CatalogEvent struct {
	EventID      string           `json:"eventId"`
	Type         CatalogEventType `json:"type"`
	ParkingSpace *ParkingSpace    `json:"parkingSpace,omitempty"`
	Booking      *Booking         `json:"booking,omitempty"`
	OccurredAt   time.Time        `json:"occurredAt"`
}
