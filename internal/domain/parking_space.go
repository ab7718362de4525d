package domain

import (
	"fmt"
	"time"

	"gopkg.in/guregu/null.v4"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ParkingSpace là một listing do chủ sở hữu đăng lên marketplace.
type ParkingSpace struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	OwnerName   string    `json:"ownerName"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contactInfo"`
	Price       float64   `json:"price"` // per hour
	Location    Location  `json:"location"`
	IsAvailable bool      `json:"isAvailable"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewParkingSpace chứa các trường do người gọi cung cấp; id, createdAt và isAvailable do store gán.
type NewParkingSpace struct {
	OwnerID     string   `json:"ownerId" binding:"required"`
	OwnerName   string   `json:"ownerName"`
	Name        string   `json:"name" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Description string   `json:"description" binding:"required"`
	ContactInfo string   `json:"contactInfo" binding:"required"`
	Price       float64  `json:"price" binding:"gt=0"`
	Location    Location `json:"location"`
	Images      []string `json:"images"`
}

// ParkingSpaceDTO là body của POST /parking-spaces; owner lấy từ session.
type ParkingSpaceDTO struct {
	Name        string   `json:"name" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Description string   `json:"description" binding:"required"`
	ContactInfo string   `json:"contactInfo" binding:"required"`
	Price       float64  `json:"price" binding:"gt=0"`
	Location    Location `json:"location"`
	Images      []string `json:"images"`
}

// UpdateParkingSpaceDTO: chỉ các trường Valid (hoặc non-nil) mới được merge.
type UpdateParkingSpaceDTO struct {
	Name        null.String `json:"name"`
	Address     null.String `json:"address"`
	Description null.String `json:"description"`
	ContactInfo null.String `json:"contactInfo"`
	Price       null.Float  `json:"price"`
	Location    *Location   `json:"location"`
	IsAvailable null.Bool   `json:"isAvailable"`
	Images      *[]string   `json:"images"`
}

func (dto UpdateParkingSpaceDTO) Validate() error {
	fields := []struct {
		name  string
		value null.String
	}{
		{"name", dto.Name},
		{"address", dto.Address},
		{"description", dto.Description},
		{"contactInfo", dto.ContactInfo},
	}
	for _, f := range fields {
		if f.value.Valid && f.value.String == "" {
			return fmt.Errorf("%s must not be empty", f.name)
		}
	}
	if dto.Price.Valid && dto.Price.Float64 <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	return nil
}

// Apply merge các trường đã đặt vào bản sao của space. ID và CreatedAt không bao giờ thay đổi.
func (dto UpdateParkingSpaceDTO) Apply(space ParkingSpace) ParkingSpace {
	if dto.Name.Valid {
		space.Name = dto.Name.String
	}
	if dto.Address.Valid {
		space.Address = dto.Address.String
	}
	if dto.Description.Valid {
		space.Description = dto.Description.String
	}
	if dto.ContactInfo.Valid {
		space.ContactInfo = dto.ContactInfo.String
	}
	if dto.Price.Valid {
		space.Price = dto.Price.Float64
	}
	if dto.Location != nil {
		space.Location = *dto.Location
	}
	if dto.IsAvailable.Valid {
		space.IsAvailable = dto.IsAvailable.Bool
	}
	if dto.Images != nil {
		space.Images = append([]string{}, (*dto.Images)...)
	}
	return space
}

type SearchFilter struct {
	Query    string   `form:"q"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
}
