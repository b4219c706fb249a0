package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportSectorRecords builds an xlsx workbook with every active case record
// under a sector: one sheet for person records, one for vehicle records, each
// row carrying the subsector the record is attached to.
func ExportSectorRecords(db *gorm.DB, sectorID string) ([]byte, string, error) {
	sector, err := GetNode(db, sectorID)
	if err != nil {
		return nil, "", err
	}
	if !sector.IsSector() {
		return nil, "", fmt.Errorf("%w: node %s is not a sector", ErrInvalidHierarchy, sectorID)
	}

	tree, err := GetTree(db, TreeOptions{RootID: sectorID})
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const personSheet = "Personas"
	const vehicleSheet = "Vehiculos"

	f.SetSheetName("Sheet1", personSheet)
	if _, err := f.NewSheet(vehicleSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create vehicle sheet: %w", err)
	}

	personHeaders := []string{"Subsector", "Nombre completo", "Alias", "Tipo documento", "Numero documento", "Observaciones"}
	for i, h := range personHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(personSheet, cell, h)
	}
	vehicleHeaders := []string{"Subsector", "Placa", "Chasis", "Marca", "Modelo", "Color", "Observaciones"}
	for i, h := range vehicleHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(vehicleSheet, cell, h)
	}

	personRow := 2
	vehicleRow := 2
	for _, sectorTree := range tree {
		for _, sub := range sectorTree.Subsectors {
			for _, p := range sub.Persons {
				values := []interface{}{sub.Name, p.FullName, p.Alias, p.DocumentType, p.DocumentNumber, p.Observations}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, personRow)
					f.SetCellValue(personSheet, cell, v)
				}
				personRow++
			}
			for _, v := range sub.Vehicles {
				values := []interface{}{sub.Name, v.Plate, v.ChassisNumber, v.Make, v.Model, v.Color, v.Observations}
				for i, val := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, vehicleRow)
					f.SetCellValue(vehicleSheet, cell, val)
				}
				vehicleRow++
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("registros_%s.xlsx", sector.Code)
	return buf.Bytes(), filename, nil
}
