package domain

import (
	"fmt"
	"math"
	"time"

	"gopkg.in/guregu/null.v4"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Active: booking vẫn còn giữ chỗ.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID          string        `json:"id"`
	ParkingID   string        `json:"parkingId"`
	ParkingName string        `json:"parkingName"`
	UserID      string        `json:"userId"`
	UserName    string        `json:"userName"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     time.Time     `json:"endTime"`
	Status      BookingStatus `json:"status"`
	TotalAmount float64       `json:"totalAmount"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Overlaps dùng khoảng nửa mở [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

type NewBooking struct {
	ParkingID   string        `json:"parkingId" binding:"required"`
	ParkingName string        `json:"parkingName"`
	UserID      string        `json:"userId" binding:"required"`
	UserName    string        `json:"userName"`
	StartTime   time.Time     `json:"startTime" binding:"required"`
	EndTime     time.Time     `json:"endTime" binding:"required,gtfield=StartTime"`
	Status      BookingStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
	TotalAmount float64       `json:"totalAmount" binding:"gte=0"`
}

// CreateBookingDTO là body của POST /bookings.
type CreateBookingDTO struct {
	ParkingID string    `json:"parkingId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
}

type UpdateBookingDTO struct {
	Status    null.String `json:"status"`
	StartTime null.Time   `json:"startTime"`
	EndTime   null.Time   `json:"endTime"`
}

func (dto UpdateBookingDTO) Validate() error {
	if dto.Status.Valid && !BookingStatus(dto.Status.String).Valid() {
		return fmt.Errorf("invalid booking status: %q", dto.Status.String)
	}
	return nil
}

// Apply không tính lại TotalAmount.
func (dto UpdateBookingDTO) Apply(b Booking) (Booking, error) {
	if dto.Status.Valid {
		b.Status = BookingStatus(dto.Status.String)
	}
	if dto.StartTime.Valid {
		b.StartTime = dto.StartTime.Time.UTC()
	}
	if dto.EndTime.Valid {
		b.EndTime = dto.EndTime.Time.UTC()
	}
	if !b.EndTime.After(b.StartTime) {
		return b, fmt.Errorf("end time must be after start time")
	}
	return b, nil
}

// Cancels báo hiệu update này chuyển booking sang cancelled.
func (dto UpdateBookingDTO) Cancels() bool {
	return dto.Status.Valid && BookingStatus(dto.Status.String) == BookingCancelled
}

// QuoteAmount = số giờ giữa start và end × giá mỗi giờ, làm tròn đến cent.
func QuoteAmount(start, end time.Time, pricePerHour float64) float64 {
	hours := end.Sub(start).Hours()
	return math.Round(hours*pricePerHour*100) / 100
}

// BookingTab tương ứng với các tab trên trang "My bookings".
type BookingTab string

const (
	TabAll       BookingTab = "all"
	TabUpcoming  BookingTab = "upcoming"
	TabCompleted BookingTab = "completed"
	TabCancelled BookingTab = "cancelled"
)

func (t BookingTab) Matches(b Booking) bool {
	switch t {
	case TabAll, "":
		return true
	case TabUpcoming:
		return b.Status.Active()
	default:
		return string(b.Status) == string(t)
	}
}
