package authority

import (
	"time"
)

// Authority is a permanent, email-verified municipal staff account.
type Authority struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Designation  string    `gorm:"type:varchar(255);not null" json:"designation"`
	Department   string    `gorm:"type:varchar(255);not null" json:"department"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Summary is the externally visible shape of an authority account.
type Summary struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

// ToSummary strips the credential fields for API responses.
func (a *Authority) ToSummary() Summary {
	return Summary{
		ID:          a.ID,
		Email:       a.Email,
		FullName:    a.FullName,
		Designation: a.Designation,
		Department:  a.Department,
	}
}
