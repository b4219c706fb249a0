package services

import (
	"strings"
	"testing"

	"crime_records_go/models"

	"github.com/stretchr/testify/assert"
)

const legacyUsers = `
{"_id": {"$oid": "64a000000000000000000001"}, "name": "Admin Uno", "email": "admin@legacy.example", "password": "$2a$10$legacyhash", "role": "ADMIN_ROLE", "state": true}
{"_id": "64a000000000000000000002", "name": "Agente Dos", "email": "agente@legacy.example", "password": "$2a$10$legacyhash2", "role": "USER_ROLE", "state": true}
{"_id": "64a000000000000000000003", "name": "Retirado", "email": "retirado@legacy.example", "password": "$2a$10$legacyhash3", "role": "USER_ROLE", "state": false}
`

const legacySectors = `
{"_id": "64b000000000000000000001", "name": "Norte", "type": "sector", "user": "64a000000000000000000001", "state": true, "order": 1}
{"_id": "64b000000000000000000002", "name": "Sur", "type": "sector", "user": "64a000000000000000000002", "state": true, "order": 2}
`

const legacySubsectors = `
{"_id": "64c000000000000000000001", "name": "Comuna 1", "type": "subsector", "parent": "64b000000000000000000001", "user": "64a000000000000000000001", "state": true, "order": 1}
{"_id": "64c000000000000000000002", "name": "Huerfana", "type": "subsector", "parent": "64bffffffffffffffffffff0", "user": "64a000000000000000000001", "state": true, "order": 2}
`

const legacyPersons = `
{"_id": "64d000000000000000000001", "name": "Juan Perez", "alias": "El Flaco", "documentType": "CC", "document": "1234567", "subsector": "64c000000000000000000001", "user": "64a000000000000000000002", "state": true, "details": {"altura": "1.75"}}
{"_id": "64d000000000000000000002", "name": "Perdido", "documentType": "CC", "document": "7654321", "subsector": "64cffffffffffffffffffff0", "user": "64a000000000000000000002", "state": true}
`

const legacyVehicles = `
{"_id": "64e000000000000000000001", "plate": "abc 123", "chassis": "9bwzzz377vt004251", "brand": "Mazda", "model": "3", "color": "Rojo", "subsector": "64c000000000000000000001", "user": "64a000000000000000000001", "state": true}
`

func legacyTestSource() *LegacySource {
	return &LegacySource{
		Users:      strings.NewReader(legacyUsers),
		Sectors:    strings.NewReader(legacySectors),
		Subsectors: strings.NewReader(legacySubsectors),
		Persons:    strings.NewReader(legacyPersons),
		Vehicles:   strings.NewReader(legacyVehicles),
	}
}

func TestMigrationMapperRun(t *testing.T) {
	db := setupTestDB(t)

	report, err := NewMigrationMapper(db).Run(legacyTestSource())
	assert.NoError(t, err)

	assert.Equal(t, 3, report.Users.Migrated)
	assert.Equal(t, 2, report.Sectors.Migrated)
	assert.Equal(t, 1, report.Subsectors.Migrated)
	assert.Equal(t, 1, report.Subsectors.Skipped) // dangling parent
	assert.Equal(t, 1, report.Persons.Migrated)
	assert.Equal(t, 1, report.Persons.Skipped) // dangling subsector
	assert.Equal(t, 1, report.Vehicles.Migrated)

	// Role labels collapse onto the three-role model
	var admin, agente, retirado models.User
	assert.NoError(t, db.Where("email = ?", "admin@legacy.example").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, db.Where("email = ?", "agente@legacy.example").First(&agente).Error)
	assert.Equal(t, models.RoleEditor, agente.Role)
	assert.NoError(t, db.Where("email = ?", "retirado@legacy.example").First(&retirado).Error)
	assert.False(t, retirado.IsActive)

	// The already-hashed password is carried over untouched
	assert.Equal(t, "$2a$10$legacyhash", admin.Password)

	// Foreign keys are remapped to the new uuids
	var sub models.HierarchyNode
	assert.NoError(t, db.Where("name = ? AND kind = ?", "Comuna 1", models.NodeKindSubsector).First(&sub).Error)
	var norte models.HierarchyNode
	assert.NoError(t, db.Where("name = ?", "Norte").First(&norte).Error)
	assert.Equal(t, norte.ID, *sub.ParentID)
	assert.Equal(t, admin.ID, sub.OwnerID)

	var person models.PersonRecord
	assert.NoError(t, db.Where("document_number = ?", "1234567").First(&person).Error)
	assert.Equal(t, sub.ID, person.SubsectorID)
	assert.Equal(t, agente.ID, person.OwnerID)
	assert.Equal(t, "1.75", person.Details["altura"])

	// Plate normalization applies on the way in
	var vehicle models.VehicleRecord
	assert.NoError(t, db.Where("plate = ?", "ABC123").First(&vehicle).Error)
	assert.Equal(t, "9BWZZZ377VT004251", vehicle.ChassisNumber)
}

func TestMigrationMapperIdempotent(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewMigrationMapper(db).Run(legacyTestSource())
	assert.NoError(t, err)

	// A second run over the same export matches everything by natural key
	report, err := NewMigrationMapper(db).Run(legacyTestSource())
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Users.Migrated)
	assert.Equal(t, 3, report.Users.Existing)
	assert.Equal(t, 0, report.Sectors.Migrated)
	assert.Equal(t, 2, report.Sectors.Existing)
	assert.Equal(t, 0, report.Subsectors.Migrated)
	assert.Equal(t, 1, report.Subsectors.Existing)
	assert.Equal(t, 0, report.Persons.Migrated)
	assert.Equal(t, 1, report.Persons.Existing)
	assert.Equal(t, 0, report.Vehicles.Migrated)
	assert.Equal(t, 1, report.Vehicles.Existing)

	var users, nodes, persons, vehicles int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.HierarchyNode{}).Count(&nodes)
	db.Model(&models.PersonRecord{}).Count(&persons)
	db.Model(&models.VehicleRecord{}).Count(&vehicles)
	assert.Equal(t, int64(3), users)
	assert.Equal(t, int64(3), nodes)
	assert.Equal(t, int64(1), persons)
	assert.Equal(t, int64(1), vehicles)
}

func TestMigrationMapperMissingStages(t *testing.T) {
	db := setupTestDB(t)

	// Only users present: every other stage processes nothing
	report, err := NewMigrationMapper(db).Run(&LegacySource{
		Users: strings.NewReader(legacyUsers),
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, report.Users.Migrated)
	assert.Equal(t, StageReport{}, report.Sectors)
	assert.Equal(t, StageReport{}, report.Persons)
}

func TestMigrationMapperMalformedDocuments(t *testing.T) {
	db := setupTestDB(t)

	report, err := NewMigrationMapper(db).Run(&LegacySource{
		Users: strings.NewReader(`{"_id": "u1", "name": "Sin Correo", "role": "USER_ROLE"}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Users.Skipped)
	assert.Equal(t, 0, report.Users.Migrated)
}

func TestMigrationMapperBadLineSkipsOnlyItself(t *testing.T) {
	db := setupTestDB(t)

	// A truncated document in the middle of the export must not take the
	// rest of the stage down with it
	users := `{"_id": "u1", "name": "Ana", "email": "ana@fiscalia.gov.co", "password": "$2a$10$aaa", "role": "ADMIN_ROLE"}
{"_id": "u2", "name": "Trunc

{"_id": "u3", "name": "Luis", "email": "luis@fiscalia.gov.co", "password": "$2a$10$bbb", "role": "USER_ROLE"}`

	report, err := NewMigrationMapper(db).Run(&LegacySource{
		Users: strings.NewReader(users),
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Users.Migrated)
	assert.Equal(t, 1, report.Users.Skipped)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestLegacyIDForms(t *testing.T) {
	var plain legacyID
	assert.NoError(t, plain.UnmarshalJSON([]byte(`"abc123"`)))
	assert.Equal(t, legacyID("abc123"), plain)

	var extended legacyID
	assert.NoError(t, extended.UnmarshalJSON([]byte(`{"$oid": "64a000000000000000000001"}`)))
	assert.Equal(t, legacyID("64a000000000000000000001"), extended)

	var bad legacyID
	assert.Error(t, bad.UnmarshalJSON([]byte(`42`)))
}
