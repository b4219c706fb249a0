package handlers

import (
	"net/http"

	"crime_records_go/db"
	"crime_records_go/models"

	"github.com/labstack/echo/v4"
)

// GetCountries returns all active countries
// GET /api/geography/countries
func GetCountries(c echo.Context) error {
	var countries []models.Country
	if err := db.DB.Where("is_active = ?", true).
		Order("name ASC").Find(&countries).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch countries")
	}
	return c.JSON(http.StatusOK, countries)
}

// GetDepartments returns the active departments of a country
// GET /api/geography/departments?country_id=xxx
func GetDepartments(c echo.Context) error {
	countryID := c.QueryParam("country_id")
	if countryID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "country_id is required")
	}

	var departments []models.Department
	if err := db.DB.Where("country_id = ? AND is_active = ?", countryID, true).
		Order("name ASC").Find(&departments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch departments")
	}
	return c.JSON(http.StatusOK, departments)
}

// GetCities returns the active cities of a department
// GET /api/geography/cities?department_id=xxx
func GetCities(c echo.Context) error {
	departmentID := c.QueryParam("department_id")
	if departmentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "department_id is required")
	}

	var cities []models.City
	if err := db.DB.Where("department_id = ? AND is_active = ?", departmentID, true).
		Order("name ASC").Find(&cities).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cities")
	}
	return c.JSON(http.StatusOK, cities)
}
