package services

import (
	"errors"
	"testing"

	"crime_records_go/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateNodeNesting(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	assert.Equal(t, models.NodeKindSector, sector.Kind)
	assert.Nil(t, sector.ParentID)
	assert.True(t, sector.IsActive)
	assert.NotEmpty(t, sector.Code)

	sub := createTestSubsector(t, db, owner.ID, sector.ID, "Comuna 1")
	assert.Equal(t, models.NodeKindSubsector, sub.Kind)
	assert.Equal(t, sector.ID, *sub.ParentID)

	// A sector cannot have a parent
	_, err := CreateNode(db, CreateNodeInput{
		Kind:     models.NodeKindSector,
		Name:     "Nested Sector",
		ParentID: &sector.ID,
		OwnerID:  owner.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	// A subsector needs a parent
	_, err = CreateNode(db, CreateNodeInput{
		Kind:    models.NodeKindSubsector,
		Name:    "Orphan",
		OwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	// A subsector cannot hang off another subsector
	_, err = CreateNode(db, CreateNodeInput{
		Kind:     models.NodeKindSubsector,
		Name:     "Too Deep",
		ParentID: &sub.ID,
		OwnerID:  owner.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	// Unknown kind
	_, err = CreateNode(db, CreateNodeInput{
		Kind:    "district",
		Name:    "Unknown",
		OwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidHierarchy)
}

func TestCreateNodeDuplicateNames(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sectorA := createTestSector(t, db, owner.ID, "Norte")
	sectorB := createTestSector(t, db, owner.ID, "Sur")

	createTestSubsector(t, db, owner.ID, sectorA.ID, "Comuna 1")

	// Same name under the same parent is rejected
	_, err := CreateNode(db, CreateNodeInput{
		Kind:     models.NodeKindSubsector,
		Name:     "Comuna 1",
		ParentID: &sectorA.ID,
		OwnerID:  owner.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateName)

	// Same name under a different sector is fine
	_, err = CreateNode(db, CreateNodeInput{
		Kind:     models.NodeKindSubsector,
		Name:     "Comuna 1",
		ParentID: &sectorB.ID,
		OwnerID:  owner.ID,
	})
	assert.NoError(t, err)

	// Duplicate sector name at the root is rejected too
	_, err = CreateNode(db, CreateNodeInput{
		Kind:    models.NodeKindSector,
		Name:    "Norte",
		OwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateNodeNameFreedBySoftDelete(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	sub := createTestSubsector(t, db, owner.ID, sector.ID, "Comuna 1")

	assert.NoError(t, SoftDeleteNode(db, sub.ID))

	// The deactivated sibling no longer blocks the name
	again, err := CreateNode(db, CreateNodeInput{
		Kind:     models.NodeKindSubsector,
		Name:     "Comuna 1",
		ParentID: &sector.ID,
		OwnerID:  owner.ID,
	})
	assert.NoError(t, err)
	assert.NotEqual(t, sub.ID, again.ID)
}

func TestCreateNodeExplicitCode(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	node, err := CreateNode(db, CreateNodeInput{
		Kind:    models.NodeKindSector,
		Name:    "Norte",
		Code:    "NOR",
		OwnerID: owner.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, "NOR", node.Code)

	_, err = CreateNode(db, CreateNodeInput{
		Kind:    models.NodeKindSector,
		Name:    "Noroccidente",
		Code:    "NOR",
		OwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestGetTreeShapeAndOrder(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	// Sort order beats name: Sur (0) before Norte (1)
	sur, err := CreateNode(db, CreateNodeInput{
		Kind: models.NodeKindSector, Name: "Sur", SortOrder: 0, OwnerID: owner.ID,
	})
	assert.NoError(t, err)
	norte, err := CreateNode(db, CreateNodeInput{
		Kind: models.NodeKindSector, Name: "Norte", SortOrder: 1, OwnerID: owner.ID,
	})
	assert.NoError(t, err)

	subB := createTestSubsector(t, db, owner.ID, sur.ID, "Barrio B")
	subA := createTestSubsector(t, db, owner.ID, sur.ID, "Barrio A")

	_, err = CreatePersonRecord(db, CreatePersonInput{
		SubsectorID:    subA.ID,
		FullName:       "Juan Perez",
		DocumentType:   models.DocTypeCC,
		DocumentNumber: "1000001",
		OwnerID:        owner.ID,
	})
	assert.NoError(t, err)
	_, err = CreateVehicleRecord(db, CreateVehicleInput{
		SubsectorID: subA.ID,
		Plate:       "ABC123",
		OwnerID:     owner.ID,
	})
	assert.NoError(t, err)

	tree, err := GetTree(db, TreeOptions{})
	assert.NoError(t, err)
	assert.Len(t, tree, 2)
	assert.Equal(t, sur.ID, tree[0].ID)
	assert.Equal(t, norte.ID, tree[1].ID)

	// Equal sort order falls back to name order
	assert.Len(t, tree[0].Subsectors, 2)
	assert.Equal(t, subA.ID, tree[0].Subsectors[0].ID)
	assert.Equal(t, subB.ID, tree[0].Subsectors[1].ID)

	assert.Len(t, tree[0].Subsectors[0].Persons, 1)
	assert.Len(t, tree[0].Subsectors[0].Vehicles, 1)
	assert.Empty(t, tree[0].Subsectors[1].Persons)
	assert.Empty(t, tree[1].Subsectors)
}

func TestGetTreeFiltersInactive(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	active := createTestSubsector(t, db, owner.ID, sector.ID, "Activa")
	hidden := createTestSubsector(t, db, owner.ID, sector.ID, "Oculta")
	assert.NoError(t, SoftDeleteNode(db, hidden.ID))

	tree, err := GetTree(db, TreeOptions{})
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.Len(t, tree[0].Subsectors, 1)
	assert.Equal(t, active.ID, tree[0].Subsectors[0].ID)

	// Admin view keeps the inactive branch
	tree, err = GetTree(db, TreeOptions{IncludeInactive: true})
	assert.NoError(t, err)
	assert.Len(t, tree[0].Subsectors, 2)
}

func TestGetTreeScopedRoot(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	createTestSector(t, db, owner.ID, "Sur")

	tree, err := GetTree(db, TreeOptions{RootID: sector.ID})
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.Equal(t, sector.ID, tree[0].ID)

	_, err = GetTree(db, TreeOptions{RootID: "no-such-id"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNode(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	createTestSector(t, db, owner.ID, "Sur")

	updated, err := UpdateNode(db, sector.ID, UpdateNodeInput{
		Name:        stringPtr("Nororiente"),
		Description: stringPtr("Zona nororiental"),
		SortOrder:   intPtr(5),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Nororiente", updated.Name)
	assert.Equal(t, "Zona nororiental", updated.Description)
	assert.Equal(t, 5, updated.SortOrder)

	// Renaming onto an active sibling collides
	_, err = UpdateNode(db, sector.ID, UpdateNodeInput{Name: stringPtr("Sur")})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = UpdateNode(db, "no-such-id", UpdateNodeInput{Name: stringPtr("X")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteSectorRefusesActiveChildren(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	sub := createTestSubsector(t, db, owner.ID, sector.ID, "Comuna 1")

	_, err := SoftDeleteSector(db, sector.ID)
	assert.ErrorIs(t, err, ErrHasActiveChildren)

	// Once the child is deactivated the sector can retire; the inactive
	// leftovers are purged for real
	assert.NoError(t, SoftDeleteNode(db, sub.ID))

	result, err := SoftDeleteSector(db, sector.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.Nodes)

	var count int64
	db.Model(&models.HierarchyNode{}).Where("id = ?", sub.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	node, err := GetNode(db, sector.ID)
	assert.NoError(t, err)
	assert.False(t, node.IsActive)
}

func TestHardDeleteNodeCascade(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleEditor)

	sector := createTestSector(t, db, owner.ID, "Norte")
	subA := createTestSubsector(t, db, owner.ID, sector.ID, "Comuna 1")
	subB := createTestSubsector(t, db, owner.ID, sector.ID, "Comuna 2")

	for i, sub := range []*models.HierarchyNode{subA, subB} {
		_, err := CreatePersonRecord(db, CreatePersonInput{
			SubsectorID:    sub.ID,
			FullName:       "Persona",
			DocumentType:   models.DocTypeCC,
			DocumentNumber: "200000" + string(rune('1'+i)),
			OwnerID:        owner.ID,
		})
		assert.NoError(t, err)
	}
	_, err := CreateVehicleRecord(db, CreateVehicleInput{
		SubsectorID: subA.ID,
		Plate:       "XYZ789",
		OwnerID:     owner.ID,
	})
	assert.NoError(t, err)

	result, err := HardDeleteNode(db, sector.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), result.Nodes)
	assert.Equal(t, int64(2), result.Persons)
	assert.Equal(t, int64(1), result.Vehicles)

	// Nothing survives, not even as soft-deleted rows
	var nodes, persons, vehicles int64
	db.Unscoped().Model(&models.HierarchyNode{}).Count(&nodes)
	db.Unscoped().Model(&models.PersonRecord{}).Count(&persons)
	db.Unscoped().Model(&models.VehicleRecord{}).Count(&vehicles)
	assert.Equal(t, int64(0), nodes)
	assert.Equal(t, int64(0), persons)
	assert.Equal(t, int64(0), vehicles)

	_, err = HardDeleteNode(db, sector.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func intPtr(i int) *int {
	return &i
}
