package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/repository"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")
var ErrBookingOverlap = errors.New("parking space is already booked for an overlapping time range")
var ErrSpaceUnavailable = errors.New("parking space is not available")

// CatalogStore giữ các listing và booking trong bộ nhớ và ghi đè toàn bộ collection
// vào BlobStore sau mỗi thay đổi. Mutex tuần tự hoá các thao tác ghi.
type CatalogStore struct {
	blobs     repository.BlobStore
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time

	mu       sync.RWMutex
	spaces   []domain.ParkingSpace
	bookings []domain.Booking
}

func NewCatalogStore(ctx context.Context, blobs repository.BlobStore, publisher EventPublisher) (*CatalogStore, error) {
	if publisher == nil {
		publisher = MultiPublisher{}
	}
	v := validator.New()
	v.SetTagName("binding")

	s := &CatalogStore{
		blobs:     blobs,
		publisher: publisher,
		validate:  v,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogStore) load(ctx context.Context) error {
	seedSpaces, seedBookings := seedCatalog(s.now())

	spaces, found, err := loadCollection[domain.ParkingSpace](ctx, s.blobs, repository.KeyParkingSpaces)
	if err != nil {
		return err
	}
	if !found {
		if err := s.saveSpaces(ctx, seedSpaces); err != nil {
			return err
		}
		log.Printf("Catalog seeded with %d sample parking spaces", len(seedSpaces))
	} else {
		s.spaces = spaces
	}

	bookings, found, err := loadCollection[domain.Booking](ctx, s.blobs, repository.KeyBookings)
	if err != nil {
		return err
	}
	if !found {
		if err := s.saveBookings(ctx, seedBookings); err != nil {
			return err
		}
		log.Printf("Catalog seeded with %d sample bookings", len(seedBookings))
	} else {
		s.bookings = bookings
	}
	return nil
}

func loadCollection[T any](ctx context.Context, blobs repository.BlobStore, key string) ([]T, bool, error) {
	raw, err := blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, true, nil
}

func saveCollection[T any](ctx context.Context, blobs repository.BlobStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := blobs.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// saveSpaces và saveBookings chỉ thay collection trong bộ nhớ khi ghi thành công. Gọi khi đang giữ s.mu.
func (s *CatalogStore) saveSpaces(ctx context.Context, next []domain.ParkingSpace) error {
	if err := saveCollection(ctx, s.blobs, repository.KeyParkingSpaces, next); err != nil {
		return err
	}
	s.spaces = next
	return nil
}

func (s *CatalogStore) saveBookings(ctx context.Context, next []domain.Booking) error {
	if err := saveCollection(ctx, s.blobs, repository.KeyBookings, next); err != nil {
		return err
	}
	s.bookings = next
	return nil
}

func (s *CatalogStore) publish(ctx context.Context, t domain.CatalogEventType, space *domain.ParkingSpace, booking *domain.Booking) {
	if err := s.publisher.Publish(ctx, newCatalogEvent(t, space, booking)); err != nil {
		log.Printf("Catalog event %s not published: %v", t, err)
	}
}

// --- ParkingSpace ---

func (s *CatalogStore) AddParkingSpace(ctx context.Context, in domain.NewParkingSpace) (domain.ParkingSpace, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.ParkingSpace{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	space := domain.ParkingSpace{
		ID:          newID(),
		OwnerID:     in.OwnerID,
		OwnerName:   in.OwnerName,
		Name:        in.Name,
		Address:     in.Address,
		Description: in.Description,
		ContactInfo: in.ContactInfo,
		Price:       in.Price,
		Location:    in.Location,
		IsAvailable: true,
		Images:      append([]string{}, in.Images...),
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	next := append(cloneSpaces(s.spaces), space)
	err := s.saveSpaces(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.ParkingSpace{}, err
	}

	log.Printf("Parking space '%s' (%s) added by owner %s", space.Name, space.ID, space.OwnerID)
	s.publish(ctx, domain.EventParkingSpaceCreated, ptr(cloneSpace(space)), nil)
	return cloneSpace(space), nil
}

// UpdateParkingSpace trả về false (không lỗi) khi id không tồn tại.
func (s *CatalogStore) UpdateParkingSpace(ctx context.Context, id string, dto domain.UpdateParkingSpaceDTO) (domain.ParkingSpace, bool, error) {
	if err := dto.Validate(); err != nil {
		return domain.ParkingSpace{}, false, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	idx := s.indexOfSpace(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ParkingSpace{}, false, nil
	}
	next := cloneSpaces(s.spaces)
	next[idx] = dto.Apply(next[idx])
	updated := next[idx]
	err := s.saveSpaces(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.ParkingSpace{}, false, err
	}

	s.publish(ctx, domain.EventParkingSpaceUpdated, ptr(cloneSpace(updated)), nil)
	return cloneSpace(updated), true, nil
}

func (s *CatalogStore) DeleteParkingSpace(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx := s.indexOfSpace(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.spaces[idx]
	next := make([]domain.ParkingSpace, 0, len(s.spaces)-1)
	next = append(next, s.spaces[:idx]...)
	next = append(next, s.spaces[idx+1:]...)
	err := s.saveSpaces(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	log.Printf("Parking space %s deleted", id)
	s.publish(ctx, domain.EventParkingSpaceDeleted, ptr(cloneSpace(removed)), nil)
	return true, nil
}

func (s *CatalogStore) GetParkingSpaceByID(id string) (domain.ParkingSpace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfSpace(id)
	if idx < 0 {
		return domain.ParkingSpace{}, repository.ErrNotFound
	}
	return cloneSpace(s.spaces[idx]), nil
}

func (s *CatalogStore) ListParkingSpaces() []domain.ParkingSpace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSpaces(s.spaces)
}

// SearchParkingSpaces: query rỗng trả về mọi listing đang available; ngược lại so khớp
// substring không phân biệt hoa thường trên name, address hoặc description.
func (s *CatalogStore) SearchParkingSpaces(query string) []domain.ParkingSpace {
	return s.FilterParkingSpaces(domain.SearchFilter{Query: query})
}

// FilterParkingSpaces là SearchParkingSpaces cộng thêm khoảng giá (bao gồm hai đầu).
func (s *CatalogStore) FilterParkingSpaces(f domain.SearchFilter) []domain.ParkingSpace {
	q := strings.ToLower(f.Query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.ParkingSpace{}
	for _, ps := range s.spaces {
		if !ps.IsAvailable {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(ps.Name), q) &&
			!strings.Contains(strings.ToLower(ps.Address), q) &&
			!strings.Contains(strings.ToLower(ps.Description), q) {
			continue
		}
		if f.MinPrice != nil && ps.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && ps.Price > *f.MaxPrice {
			continue
		}
		result = append(result, cloneSpace(ps))
	}
	return result
}

// FeaturedParkingSpaces trả về tối đa limit listing available đầu tiên.
func (s *CatalogStore) FeaturedParkingSpaces(limit int) []domain.ParkingSpace {
	available := s.SearchParkingSpaces("")
	if limit >= 0 && len(available) > limit {
		available = available[:limit]
	}
	return available
}

func (s *CatalogStore) GetUserParkingSpaces(userID string) []domain.ParkingSpace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.ParkingSpace{}
	for _, ps := range s.spaces {
		if ps.OwnerID == userID {
			result = append(result, cloneSpace(ps))
		}
	}
	return result
}

// --- Booking ---

// CreateBooking thêm booking rồi đánh dấu listing tương ứng là không available.
// Booking active chồng lấn thời gian trên cùng listing bị từ chối với ErrBookingOverlap.
func (s *CatalogStore) CreateBooking(ctx context.Context, in domain.NewBooking) (domain.Booking, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Booking{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	booking := domain.Booking{
		ID:          newID(),
		ParkingID:   in.ParkingID,
		ParkingName: in.ParkingName,
		UserID:      in.UserID,
		UserName:    in.UserName,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Status:      in.Status,
		TotalAmount: in.TotalAmount,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	if booking.Status.Active() && s.hasOverlap(booking.ParkingID, "", booking.StartTime, booking.EndTime) {
		s.mu.Unlock()
		return domain.Booking{}, ErrBookingOverlap
	}
	next := append(append([]domain.Booking(nil), s.bookings...), booking)
	if err := s.saveBookings(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Booking{}, err
	}
	space, changed := s.setAvailabilityLocked(ctx, booking.ParkingID, false)
	s.mu.Unlock()

	log.Printf("Booking %s created for parking %s by user %s (%.2f)", booking.ID, booking.ParkingID, booking.UserID, booking.TotalAmount)
	s.publish(ctx, domain.EventBookingCreated, nil, ptr(booking))
	if changed {
		s.publish(ctx, domain.EventParkingSpaceUpdated, ptr(space), nil)
	}
	return booking, nil
}

// BookParkingSpace là luồng của form đặt chỗ: tra listing, tính tiền theo giá hiện tại
// và tạo booking ở trạng thái confirmed.
func (s *CatalogStore) BookParkingSpace(ctx context.Context, user domain.User, dto domain.CreateBookingDTO) (domain.Booking, error) {
	if !dto.EndTime.After(dto.StartTime) {
		return domain.Booking{}, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	space, err := s.GetParkingSpaceByID(dto.ParkingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !space.IsAvailable {
		return domain.Booking{}, ErrSpaceUnavailable
	}
	return s.CreateBooking(ctx, domain.NewBooking{
		ParkingID:   space.ID,
		ParkingName: space.Name,
		UserID:      user.ID,
		UserName:    user.Name,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Status:      domain.BookingConfirmed,
		TotalAmount: domain.QuoteAmount(dto.StartTime, dto.EndTime, space.Price),
	})
}

// UpdateBooking merge dto vào booking; khi chuyển sang cancelled, listing được đánh dấu available
// lại mà không kiểm tra các booking khác.
func (s *CatalogStore) UpdateBooking(ctx context.Context, id string, dto domain.UpdateBookingDTO) (domain.Booking, bool, error) {
	if err := dto.Validate(); err != nil {
		return domain.Booking{}, false, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	idx := s.indexOfBooking(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Booking{}, false, nil
	}
	updated, err := dto.Apply(s.bookings[idx])
	if err != nil {
		s.mu.Unlock()
		return domain.Booking{}, false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if updated.Status.Active() && s.hasOverlap(updated.ParkingID, updated.ID, updated.StartTime, updated.EndTime) {
		s.mu.Unlock()
		return domain.Booking{}, false, ErrBookingOverlap
	}
	next := append([]domain.Booking(nil), s.bookings...)
	next[idx] = updated
	if err := s.saveBookings(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Booking{}, false, err
	}
	var (
		space   domain.ParkingSpace
		changed bool
	)
	if dto.Cancels() {
		space, changed = s.setAvailabilityLocked(ctx, updated.ParkingID, true)
	}
	s.mu.Unlock()

	s.publish(ctx, domain.EventBookingUpdated, nil, ptr(updated))
	if changed {
		s.publish(ctx, domain.EventParkingSpaceUpdated, ptr(space), nil)
	}
	return updated, true, nil
}

func (s *CatalogStore) GetBookingByID(id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfBooking(id)
	if idx < 0 {
		return domain.Booking{}, repository.ErrNotFound
	}
	return s.bookings[idx], nil
}

func (s *CatalogStore) ListBookings() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Booking{}, s.bookings...)
}

func (s *CatalogStore) GetUserBookings(userID string) []domain.Booking {
	return s.FilterUserBookings(userID, domain.TabAll)
}

func (s *CatalogStore) FilterUserBookings(userID string, tab domain.BookingTab) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID && tab.Matches(b) {
			result = append(result, b)
		}
	}
	return result
}

// --- helpers (gọi khi đang giữ s.mu) ---

func (s *CatalogStore) indexOfSpace(id string) int {
	for i := range s.spaces {
		if s.spaces[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CatalogStore) indexOfBooking(id string) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CatalogStore) hasOverlap(parkingID, excludeID string, start, end time.Time) bool {
	for _, b := range s.bookings {
		if b.ParkingID == parkingID && b.ID != excludeID && b.Status.Active() && b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// setAvailabilityLocked là best-effort: listing không tồn tại hoặc lỗi ghi chỉ được log.
func (s *CatalogStore) setAvailabilityLocked(ctx context.Context, parkingID string, available bool) (domain.ParkingSpace, bool) {
	idx := s.indexOfSpace(parkingID)
	if idx < 0 {
		log.Printf("Parking space %s not found, availability left unchanged", parkingID)
		return domain.ParkingSpace{}, false
	}
	next := cloneSpaces(s.spaces)
	next[idx].IsAvailable = available
	if err := s.saveSpaces(ctx, next); err != nil {
		log.Printf("Could not set availability of parking space %s to %t: %v", parkingID, available, err)
		return domain.ParkingSpace{}, false
	}
	return cloneSpace(next[idx]), true
}

func cloneSpace(ps domain.ParkingSpace) domain.ParkingSpace {
	ps.Images = append([]string{}, ps.Images...)
	return ps
}

func cloneSpaces(spaces []domain.ParkingSpace) []domain.ParkingSpace {
	out := make([]domain.ParkingSpace, len(spaces))
	for i := range spaces {
		out[i] = cloneSpace(spaces[i])
	}
	return out
}

func ptr[T any](v T) *T { return &v }
