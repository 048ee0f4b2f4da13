package seeders

import (
	"fmt"

	"pothole-backend/logger"
	"pothole-backend/models/department"

	"gorm.io/gorm"
)

func SeedDepartments(db *gorm.DB) {
	logger.Info("Checking department catalog integrity...")

	departments := []department.Department{
		{Code: "PWD", Name: "Public Works Department"},
		{Code: "RND", Name: "Roads and Drainage"},
		{Code: "TRF", Name: "Traffic Engineering"},
		{Code: "SWM", Name: "Solid Waste Management"},
		{Code: "WSS", Name: "Water Supply and Sewerage"},
		{Code: "ELE", Name: "Street Lighting and Electrical"},
		{Code: "HOR", Name: "Horticulture and Parks"},
		{Code: "TPL", Name: "Town Planning"},
	}

	for _, dept := range departments {
		var existing department.Department
		err := db.Where("code = ?", dept.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&dept).Error; err != nil {
				logger.Error(fmt.Sprintf("Failed to seed department %s", dept.Code), err)
			}
		} else if err != nil {
			logger.Error(fmt.Sprintf("Failed to check department %s", dept.Code), err)
		}
	}

	logger.Success("Department catalog ready")
}
