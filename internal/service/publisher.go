package service

import (
	"context"
	"log"
	"time"

	"parking_marketplace/internal/domain"

	"github.com/google/uuid"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.CatalogEvent) error
}

// MultiPublisher gửi event đến mọi publisher; lỗi chỉ được log.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event domain.CatalogEvent) error {
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			log.Printf("Publish %s (%s) failed: %v", event.Type, event.EventID, err)
		}
	}
	return nil
}

func newCatalogEvent(t domain.CatalogEventType, space *domain.ParkingSpace, booking *domain.Booking) domain.CatalogEvent {
	return domain.CatalogEvent{
		EventID:      uuid.NewString(),
		Type:         t,
		ParkingSpace: space,
		Booking:      booking,
		OccurredAt:   time.Now().UTC(),
	}
}
