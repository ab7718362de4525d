package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/repository"
	"parking_marketplace/internal/repository/memory"
	"parking_marketplace/internal/service"

	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CatalogEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.CatalogEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.CatalogEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// failingBlobs trả lỗi cho Put sau khi failPuts được bật.
type failingBlobs struct {
	repository.BlobStore
	failPuts bool
}

func (f *failingBlobs) Put(ctx context.Context, key, value string) error {
	if f.failPuts {
		return errors.New("disk full")
	}
	return f.BlobStore.Put(ctx, key, value)
}

func newCatalog(t *testing.T) (*service.CatalogStore, repository.BlobStore, *recordingPublisher) {
	t.Helper()
	blobs := memory.NewMemBlobRepository()
	pub := &recordingPublisher{}
	cs, err := service.NewCatalogStore(context.Background(), blobs, pub)
	require.NoError(t, err)
	return cs, blobs, pub
}

func validSpace() domain.NewParkingSpace {
	return domain.NewParkingSpace{
		OwnerID:     "1",
		OwnerName:   "demo",
		Name:        "Garage Bay",
		Address:     "10 River Rd",
		Description: "Indoor bay with EV charger.",
		ContactInfo: "555-000-1111",
		Price:       12.5,
		Location:    domain.Location{Latitude: 1.5, Longitude: 2.5},
		Images:      []string{"https://example.com/a.jpg"},
	}
}

func ids(spaces []domain.ParkingSpace) []string {
	out := make([]string, len(spaces))
	for i, s := range spaces {
		out[i] = s.ID
	}
	return out
}

func TestNewCatalogStore_SeedsFirstRun(t *testing.T) {
	cs, blobs, _ := newCatalog(t)

	require.Len(t, cs.ListParkingSpaces(), 4)
	require.Len(t, cs.ListBookings(), 1)

	raw, err := blobs.Get(context.Background(), repository.KeyParkingSpaces)
	require.NoError(t, err)
	var persisted []domain.ParkingSpace
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Equal(t, []string{"1", "2", "3", "4"}, ids(persisted))

	_, err = blobs.Get(context.Background(), repository.KeyBookings)
	require.NoError(t, err)
}

func TestNewCatalogStore_RestoresPersistedCollections(t *testing.T) {
	ctx := context.Background()
	cs, blobs, _ := newCatalog(t)

	added, err := cs.AddParkingSpace(ctx, validSpace())
	require.NoError(t, err)
	_, err = cs.BookParkingSpace(ctx, domain.User{ID: "1", Name: "demo"}, domain.CreateBookingDTO{
		ParkingID: "2",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(3 * time.Hour),
	})
	require.NoError(t, err)

	restored, err := service.NewCatalogStore(ctx, blobs, nil)
	require.NoError(t, err)
	require.Equal(t, cs.ListParkingSpaces(), restored.ListParkingSpaces())
	require.Equal(t, cs.ListBookings(), restored.ListBookings())

	got, err := restored.GetParkingSpaceByID(added.ID)
	require.NoError(t, err)
	require.Equal(t, added, got)
}

func TestAddParkingSpace(t *testing.T) {
	ctx := context.Background()
	cs, _, pub := newCatalog(t)
	before := cs.ListParkingSpaces()

	first, err := cs.AddParkingSpace(ctx, validSpace())
	require.NoError(t, err)
	second, err := cs.AddParkingSpace(ctx, validSpace())
	require.NoError(t, err)

	require.NotEmpty(t, first.ID)
	require.NotEqual(t, first.ID, second.ID)
	require.True(t, first.IsAvailable)
	require.False(t, first.CreatedAt.IsZero())

	after := cs.ListParkingSpaces()
	require.Len(t, after, len(before)+2)
	require.Equal(t, before, after[:len(before)])
	require.Equal(t, first, after[len(before)])
	require.Equal(t, []domain.CatalogEventType{domain.EventParkingSpaceCreated, domain.EventParkingSpaceCreated}, pub.types())
}

func TestAddParkingSpace_Validation(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)

	cases := map[string]func(*domain.NewParkingSpace){
		"missing name":        func(in *domain.NewParkingSpace) { in.Name = "" },
		"missing address":     func(in *domain.NewParkingSpace) { in.Address = "" },
		"missing description": func(in *domain.NewParkingSpace) { in.Description = "" },
		"missing contact":     func(in *domain.NewParkingSpace) { in.ContactInfo = "" },
		"zero price":          func(in *domain.NewParkingSpace) { in.Price = 0 },
		"negative price":      func(in *domain.NewParkingSpace) { in.Price = -3 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validSpace()
			mutate(&in)
			_, err := cs.AddParkingSpace(ctx, in)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}
	require.Len(t, cs.ListParkingSpaces(), 4)
}

func TestAddParkingSpace_PersistFailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	blobs := &failingBlobs{BlobStore: memory.NewMemBlobRepository()}
	cs, err := service.NewCatalogStore(ctx, blobs, nil)
	require.NoError(t, err)

	blobs.failPuts = true
	_, err = cs.AddParkingSpace(ctx, validSpace())
	require.Error(t, err)
	require.Len(t, cs.ListParkingSpaces(), 4)
}

func TestUpdateParkingSpace(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	orig, err := cs.GetParkingSpaceByID("2")
	require.NoError(t, err)

	updated, found, err := cs.UpdateParkingSpace(ctx, "2", domain.UpdateParkingSpaceDTO{
		Price:       null.FloatFrom(7),
		IsAvailable: null.BoolFrom(false),
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 7.0, updated.Price)
	require.False(t, updated.IsAvailable)
	require.Equal(t, orig.Name, updated.Name)
	require.Equal(t, orig.CreatedAt, updated.CreatedAt)
	require.Equal(t, orig.ID, updated.ID)
}

func TestUpdateParkingSpace_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	cs, _, pub := newCatalog(t)
	before := cs.ListParkingSpaces()

	_, found, err := cs.UpdateParkingSpace(ctx, "missing", domain.UpdateParkingSpaceDTO{Name: null.StringFrom("x")})
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, before, cs.ListParkingSpaces())
	require.Empty(t, pub.types())
}

func TestUpdateParkingSpace_Validation(t *testing.T) {
	cs, _, _ := newCatalog(t)
	_, _, err := cs.UpdateParkingSpace(context.Background(), "1", domain.UpdateParkingSpaceDTO{Price: null.FloatFrom(0)})
	require.ErrorIs(t, err, service.ErrValidation)
	_, _, err = cs.UpdateParkingSpace(context.Background(), "1", domain.UpdateParkingSpaceDTO{Name: null.StringFrom("")})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestDeleteParkingSpace(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)

	found, err := cs.DeleteParkingSpace(ctx, "3")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"1", "2", "4"}, ids(cs.ListParkingSpaces()))

	_, err = cs.GetParkingSpaceByID("3")
	require.ErrorIs(t, err, repository.ErrNotFound)

	found, err = cs.DeleteParkingSpace(ctx, "3")
	require.NoError(t, err)
	require.False(t, found)
	require.Len(t, cs.ListParkingSpaces(), 3)
}

func TestSearchParkingSpaces(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)

	require.Equal(t, []string{"1", "2", "3", "4"}, ids(cs.SearchParkingSpaces("")))

	_, _, err := cs.UpdateParkingSpace(ctx, "2", domain.UpdateParkingSpaceDTO{IsAvailable: null.BoolFrom(false)})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3", "4"}, ids(cs.SearchParkingSpaces("")))

	// name, address, description; không phân biệt hoa thường
	require.Equal(t, []string{"4"}, ids(cs.SearchParkingSpaces("SRM")))
	require.Equal(t, []string{"4"}, ids(cs.SearchParkingSpaces("potheri")))
	require.Equal(t, []string{"1"}, ids(cs.SearchParkingSpaces("SECURED garage")))
	require.Equal(t, []string{"3", "4"}, ids(cs.SearchParkingSpaces("retailers")))

	// listing không available không bao giờ khớp
	require.Empty(t, cs.SearchParkingSpaces("driveway"))
	// contactInfo và ownerName không được tìm
	require.Empty(t, cs.SearchParkingSpaces("555-123"))
	require.Empty(t, cs.SearchParkingSpaces("Aswin"))
}

func TestFilterParkingSpaces_PriceRange(t *testing.T) {
	cs, _, _ := newCatalog(t)
	lo, hi := 8.0, 10.0

	require.Equal(t, []string{"1", "3"}, ids(cs.FilterParkingSpaces(domain.SearchFilter{MinPrice: &lo, MaxPrice: &hi})))
	require.Equal(t, []string{"3", "4"}, ids(cs.FilterParkingSpaces(domain.SearchFilter{Query: "retailers", MinPrice: &lo})))
	require.Equal(t, []string{"1", "2"}, ids(cs.FilterParkingSpaces(domain.SearchFilter{MaxPrice: &lo})))
}

func TestFeaturedParkingSpaces(t *testing.T) {
	cs, _, _ := newCatalog(t)
	require.Equal(t, []string{"1", "2", "3"}, ids(cs.FeaturedParkingSpaces(3)))
	require.Len(t, cs.FeaturedParkingSpaces(10), 4)
	require.Empty(t, cs.FeaturedParkingSpaces(0))
}

func TestGetUserParkingSpaces(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)

	added, err := cs.AddParkingSpace(ctx, validSpace())
	require.NoError(t, err)

	require.Equal(t, []string{"1", added.ID}, ids(cs.GetUserParkingSpaces("1")))
	require.Equal(t, []string{"4"}, ids(cs.GetUserParkingSpaces("4")))
	require.Empty(t, cs.GetUserParkingSpaces("nobody"))
}

func TestSRMBookingScenario(t *testing.T) {
	ctx := context.Background()
	cs, _, pub := newCatalog(t)

	results := cs.SearchParkingSpaces("SRM")
	require.Len(t, results, 1)
	srm := results[0]
	require.Equal(t, "SRM IST", srm.Name)
	require.Equal(t, 15.0, srm.Price)

	start := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	booking, err := cs.BookParkingSpace(ctx, domain.User{ID: "1", Name: "demo"}, domain.CreateBookingDTO{
		ParkingID: srm.ID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, 30.0, booking.TotalAmount)
	require.Equal(t, domain.BookingConfirmed, booking.Status)
	require.Equal(t, "SRM IST", booking.ParkingName)
	require.Equal(t, "demo", booking.UserName)

	space, err := cs.GetParkingSpaceByID(srm.ID)
	require.NoError(t, err)
	require.False(t, space.IsAvailable)
	require.Empty(t, cs.SearchParkingSpaces("SRM"))
	require.Equal(t, []domain.CatalogEventType{domain.EventBookingCreated, domain.EventParkingSpaceUpdated}, pub.types())

	_, found, err := cs.UpdateBooking(ctx, booking.ID, domain.UpdateBookingDTO{Status: null.StringFrom("cancelled")})
	require.NoError(t, err)
	require.True(t, found)

	space, err = cs.GetParkingSpaceByID(srm.ID)
	require.NoError(t, err)
	require.True(t, space.IsAvailable)

	got, err := cs.GetBookingByID(booking.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BookingCancelled, got.Status)
	require.Equal(t, 30.0, got.TotalAmount)
}

func TestBookParkingSpace_Errors(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	user := domain.User{ID: "1", Name: "demo"}
	start := time.Now().Add(time.Hour)

	_, err := cs.BookParkingSpace(ctx, user, domain.CreateBookingDTO{ParkingID: "missing", StartTime: start, EndTime: start.Add(time.Hour)})
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = cs.BookParkingSpace(ctx, user, domain.CreateBookingDTO{ParkingID: "2", StartTime: start, EndTime: start})
	require.ErrorIs(t, err, service.ErrValidation)

	_, _, err = cs.UpdateParkingSpace(ctx, "2", domain.UpdateParkingSpaceDTO{IsAvailable: null.BoolFrom(false)})
	require.NoError(t, err)
	_, err = cs.BookParkingSpace(ctx, user, domain.CreateBookingDTO{ParkingID: "2", StartTime: start, EndTime: start.Add(time.Hour)})
	require.ErrorIs(t, err, service.ErrSpaceUnavailable)
}

func TestCreateBooking_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	start := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)

	newBooking := func(s, e time.Time, status domain.BookingStatus) domain.NewBooking {
		return domain.NewBooking{ParkingID: "3", UserID: "9", StartTime: s, EndTime: e, Status: status, TotalAmount: 10}
	}

	_, err := cs.CreateBooking(ctx, newBooking(start, start.Add(2*time.Hour), domain.BookingConfirmed))
	require.NoError(t, err)

	_, err = cs.CreateBooking(ctx, newBooking(start.Add(time.Hour), start.Add(3*time.Hour), domain.BookingPending))
	require.ErrorIs(t, err, service.ErrBookingOverlap)

	// nửa mở: bắt đầu đúng lúc booking trước kết thúc thì không chồng lấn
	_, err = cs.CreateBooking(ctx, newBooking(start.Add(2*time.Hour), start.Add(3*time.Hour), domain.BookingConfirmed))
	require.NoError(t, err)

	// CreateBooking không kiểm tra isAvailable
	space, err := cs.GetParkingSpaceByID("3")
	require.NoError(t, err)
	require.False(t, space.IsAvailable)
	require.Len(t, cs.ListBookings(), 3)
}

func TestCreateBooking_CancelledBookingDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	start := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
	in := domain.NewBooking{ParkingID: "3", UserID: "9", StartTime: start, EndTime: start.Add(time.Hour), Status: domain.BookingConfirmed}

	b, err := cs.CreateBooking(ctx, in)
	require.NoError(t, err)
	_, _, err = cs.UpdateBooking(ctx, b.ID, domain.UpdateBookingDTO{Status: null.StringFrom("cancelled")})
	require.NoError(t, err)

	_, err = cs.CreateBooking(ctx, in)
	require.NoError(t, err)
}

func TestCreateBooking_Validation(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	start := time.Now()

	_, err := cs.CreateBooking(ctx, domain.NewBooking{ParkingID: "1", UserID: "1", StartTime: start, EndTime: start.Add(-time.Minute), Status: domain.BookingPending})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = cs.CreateBooking(ctx, domain.NewBooking{ParkingID: "1", UserID: "1", StartTime: start, EndTime: start.Add(time.Hour), Status: "archived"})
	require.ErrorIs(t, err, service.ErrValidation)

	require.Len(t, cs.ListBookings(), 1)
}

func TestCreateBooking_UnknownSpaceStillRecorded(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	start := time.Now()

	b, err := cs.CreateBooking(ctx, domain.NewBooking{ParkingID: "ghost", UserID: "1", StartTime: start, EndTime: start.Add(time.Hour), Status: domain.BookingPending})
	require.NoError(t, err)
	got, err := cs.GetBookingByID(b.ID)
	require.NoError(t, err)
	require.Equal(t, "ghost", got.ParkingID)
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	before := cs.ListBookings()

	_, found, err := cs.UpdateBooking(ctx, "missing", domain.UpdateBookingDTO{Status: null.StringFrom("completed")})
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, before, cs.ListBookings())

	_, _, err = cs.UpdateBooking(ctx, "1", domain.UpdateBookingDTO{Status: null.StringFrom("lost")})
	require.ErrorIs(t, err, service.ErrValidation)

	seeded := before[0]
	_, _, err = cs.UpdateBooking(ctx, "1", domain.UpdateBookingDTO{EndTime: null.TimeFrom(seeded.StartTime)})
	require.ErrorIs(t, err, service.ErrValidation)

	updated, found, err := cs.UpdateBooking(ctx, "1", domain.UpdateBookingDTO{Status: null.StringFrom("completed")})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.BookingCompleted, updated.Status)
	require.Equal(t, seeded.TotalAmount, updated.TotalAmount)
	require.Equal(t, seeded.CreatedAt, updated.CreatedAt)
}

func TestFilterUserBookings(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newCatalog(t)
	start := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)

	mk := func(parkingID string, status domain.BookingStatus) domain.Booking {
		b, err := cs.CreateBooking(ctx, domain.NewBooking{ParkingID: parkingID, UserID: "7", StartTime: start, EndTime: start.Add(time.Hour), Status: status})
		require.NoError(t, err)
		return b
	}
	pending := mk("1", domain.BookingPending)
	confirmed := mk("2", domain.BookingConfirmed)
	completed := mk("3", domain.BookingCompleted)
	cancelled := mk("4", domain.BookingCancelled)

	bookingIDs := func(bs []domain.Booking) []string {
		out := make([]string, len(bs))
		for i, b := range bs {
			out[i] = b.ID
		}
		return out
	}

	require.Equal(t, []string{pending.ID, confirmed.ID, completed.ID, cancelled.ID}, bookingIDs(cs.GetUserBookings("7")))
	require.Equal(t, []string{pending.ID, confirmed.ID}, bookingIDs(cs.FilterUserBookings("7", domain.TabUpcoming)))
	require.Equal(t, []string{completed.ID}, bookingIDs(cs.FilterUserBookings("7", domain.TabCompleted)))
	require.Equal(t, []string{cancelled.ID}, bookingIDs(cs.FilterUserBookings("7", domain.TabCancelled)))
	require.Equal(t, []string{"1"}, bookingIDs(cs.GetUserBookings("2")))
	require.Empty(t, cs.GetUserBookings("nobody"))
}

func TestListParkingSpaces_ReturnsCopies(t *testing.T) {
	cs, _, _ := newCatalog(t)
	spaces := cs.ListParkingSpaces()
	spaces[0].Name = "mutated"
	spaces[0].Images[0] = "mutated"

	fresh, err := cs.GetParkingSpaceByID(spaces[0].ID)
	require.NoError(t, err)
	require.Equal(t, "Downtown Parking Spot", fresh.Name)
	require.NotEqual(t, "mutated", fresh.Images[0])
}
