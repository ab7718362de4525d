package service

import (
	"log"

	"github.com/google/uuid"
)

// newID trả về UUIDv7: tăng dần theo thời gian nhưng không trùng khi tạo trong cùng một millisecond.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		log.Printf("uuid.NewV7 failed, falling back to v4: %v", err)
		return uuid.NewString()
	}
	return id.String()
}
