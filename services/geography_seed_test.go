package services

import (
	"testing"

	"crime_records_go/models"

	"github.com/stretchr/testify/assert"
)

func TestSeedGeography(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, SeedGeography(db))

	var colombia models.Country
	assert.NoError(t, db.Where("code = ?", "COL").First(&colombia).Error)

	var departments int64
	db.Model(&models.Department{}).Where("country_id = ?", colombia.ID).Count(&departments)
	assert.Equal(t, int64(len(colombiaDepartments)), departments)

	var cities int64
	db.Model(&models.City{}).Count(&cities)
	assert.Equal(t, int64(len(colombiaCapitals)), cities)

	// Re-seeding does not duplicate
	assert.NoError(t, SeedGeography(db))
	var departmentsAgain int64
	db.Model(&models.Department{}).Count(&departmentsAgain)
	assert.Equal(t, departments, departmentsAgain)
}
