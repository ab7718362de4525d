package service

import (
	"time"

	"parking_marketplace/internal/domain"
)

// seedCatalog trả về dữ liệu mẫu ghi vào store ở lần chạy đầu tiên.
func seedCatalog(now time.Time) ([]domain.ParkingSpace, []domain.Booking) {
	now = now.UTC()
	spaces := []domain.ParkingSpace{
		{
			ID:          "1",
			OwnerID:     "1",
			OwnerName:   "John Smith",
			Name:        "Downtown Parking Spot",
			Address:     "123 Main St, City Center",
			Description: "Covered parking spot for midsize vehicles in secured garage.",
			ContactInfo: "555-123-4567",
			Price:       8,
			Location:    domain.Location{Latitude: 37.7749, Longitude: -122.4194},
			IsAvailable: true,
			Images: []string{
				"https://images.pexels.com/photos/1004665/pexels-photo-1004665.jpeg",
				"https://images.pexels.com/photos/375893/pexels-photo-375893.jpeg",
			},
			CreatedAt: now,
		},
		{
			ID:          "2",
			OwnerID:     "2",
			OwnerName:   "Sarah Johnson",
			Name:        "Residential Driveway",
			Address:     "456 Oak Ave, Suburbia",
			Description: "Private driveway with space for a large SUV or truck.",
			ContactInfo: "555-987-6543",
			Price:       5,
			Location:    domain.Location{Latitude: 37.7833, Longitude: -122.4167},
			IsAvailable: true,
			Images:      []string{"https://images.pexels.com/photos/1054114/pexels-photo-1054114.jpeg"},
			CreatedAt:   now,
		},
		{
			ID:          "3",
			OwnerID:     "3",
			OwnerName:   "Michael Chen",
			Name:        "Shopping Center Spot",
			Address:     "789 Market St, Shopping District",
			Description: "Convenient parking near major retailers and restaurants.",
			ContactInfo: "555-456-7890",
			Price:       10,
			Location:    domain.Location{Latitude: 37.7903, Longitude: -122.4063},
			IsAvailable: true,
			Images:      []string{"https://images.pexels.com/photos/1370704/pexels-photo-1370704.jpeg"},
			CreatedAt:   now,
		},
		{
			ID:          "4",
			OwnerID:     "4",
			OwnerName:   "Aswin",
			Name:        "SRM IST",
			Address:     "srm nagar, potheri, kattankulathur.kancheepuram-dist",
			Description: "Convenient parking near major retailers and restaurants.",
			ContactInfo: "6374654808",
			Price:       15,
			Location:    domain.Location{Latitude: 12.9853, Longitude: 79.9698},
			IsAvailable: true,
			Images:      []string{"https://mdmsenquiry.com/wp-content/uploads/2017/09/srm-university.jpg"},
			CreatedAt:   now,
		},
	}

	bookings := []domain.Booking{
		{
			ID:          "1",
			ParkingID:   "1",
			ParkingName: "Downtown Parking Spot",
			UserID:      "2",
			UserName:    "Sarah Johnson",
			StartTime:   now.Add(24 * time.Hour),
			EndTime:     now.Add(25 * time.Hour),
			Status:      domain.BookingConfirmed,
			TotalAmount: 16,
			CreatedAt:   now,
		},
	}
	return spaces, bookings
}
