package department

import (
	"time"
)

// Department is a seeded catalog entry for the municipal departments an
// authority can belong to. Served to the signup form as a dropdown source.
type Department struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"type:varchar(20);not null;unique" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
