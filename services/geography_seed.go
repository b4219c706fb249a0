package services

import (
	"errors"
	"fmt"
	"log"

	"crime_records_go/models"

	"gorm.io/gorm"
)

// Colombian departments data
var colombiaDepartments = []struct {
	Code string
	Name string
}{
	{"91", "AMAZONAS"},
	{"05", "ANTIOQUIA"},
	{"81", "ARAUCA"},
	{"08", "ATLANTICO"},
	{"11", "BOGOTA"},
	{"13", "BOLIVAR"},
	{"15", "BOYACA"},
	{"17", "CALDAS"},
	{"18", "CAQUETA"},
	{"85", "CASANARE"},
	{"19", "CAUCA"},
	{"20", "CESAR"},
	{"27", "CHOCO"},
	{"23", "CORDOBA"},
	{"25", "CUNDINAMARCA"},
	{"94", "GUAINIA"},
	{"95", "GUAVIARE"},
	{"41", "HUILA"},
	{"44", "LA GUAJIRA"},
	{"47", "MAGDALENA"},
	{"50", "META"},
	{"52", "NARINO"},
	{"54", "NORTE DE SANTANDER"},
	{"86", "PUTUMAYO"},
	{"63", "QUINDIO"},
	{"66", "RISARALDA"},
	{"88", "SAN ANDRES"},
	{"68", "SANTANDER"},
	{"70", "SUCRE"},
	{"73", "TOLIMA"},
	{"76", "VALLE DEL CAUCA"},
	{"97", "VAUPES"},
	{"99", "VICHADA"},
}

// Capital cities per department code, used to bootstrap the city table
var colombiaCapitals = map[string]struct {
	Code string
	Name string
}{
	"05": {"05001", "Medellin"},
	"08": {"08001", "Barranquilla"},
	"11": {"11001", "Bogota D.C."},
	"13": {"13001", "Cartagena"},
	"15": {"15001", "Tunja"},
	"17": {"17001", "Manizales"},
	"19": {"19001", "Popayan"},
	"25": {"25001", "Agua de Dios"},
	"41": {"41001", "Neiva"},
	"50": {"50001", "Villavicencio"},
	"52": {"52001", "Pasto"},
	"54": {"54001", "Cucuta"},
	"66": {"66001", "Pereira"},
	"68": {"68001", "Bucaramanga"},
	"73": {"73001", "Ibague"},
	"76": {"76001", "Cali"},
}

// SeedGeography seeds Colombia with its departments and capital cities. The
// seed is idempotent: existing rows are left untouched.
func SeedGeography(db *gorm.DB) error {
	log.Println("[SEED] Seeding geography data...")

	var colombia models.Country
	result := db.Where("code = ?", "COL").First(&colombia)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		colombia = models.Country{
			Code:     "COL",
			Name:     "Colombia",
			IsActive: true,
		}
		if err := db.Create(&colombia).Error; err != nil {
			return fmt.Errorf("failed to create Colombia country: %w", err)
		}
	} else if result.Error != nil {
		return fmt.Errorf("failed to look up Colombia: %w", result.Error)
	}

	created := 0
	for _, dept := range colombiaDepartments {
		var existing models.Department
		err := db.Where("country_id = ? AND code = ?", colombia.ID, dept.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up department %s: %w", dept.Code, err)
		}

		department := models.Department{
			CountryID: colombia.ID,
			Code:      dept.Code,
			Name:      dept.Name,
			IsActive:  true,
		}
		if err := db.Create(&department).Error; err != nil {
			return fmt.Errorf("failed to create department %s: %w", dept.Name, err)
		}
		created++

		if capital, ok := colombiaCapitals[dept.Code]; ok {
			city := models.City{
				DepartmentID: department.ID,
				Code:         capital.Code,
				Name:         capital.Name,
				IsActive:     true,
			}
			if err := db.Create(&city).Error; err != nil {
				return fmt.Errorf("failed to create city %s: %w", capital.Name, err)
			}
		}
	}

	if created > 0 {
		log.Printf("[SEED] Created %d departments", created)
	} else {
		log.Println("[SEED] Geography data already present, skipping")
	}
	return nil
}
