package citizen

import (
	"time"
)

// Citizen is a permanent, phone-verified citizen account. A row is only
// ever created as the result of a successful OTP verification.
type Citizen struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName    string    `gorm:"type:varchar(255);not null" json:"full_name"`
	PhoneNumber string    `gorm:"type:varchar(20);not null;unique" json:"phone_number"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
