package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"crime_records_go/models"

	"gorm.io/gorm"
)

// CreateNodeInput carries the fields accepted when creating a hierarchy node
type CreateNodeInput struct {
	Kind        string
	Name        string
	Code        string
	Description string
	ParentID    *string
	SortOrder   int
	OwnerID     string

	// Location pre-fill (sector only)
	CountryID    *string
	DepartmentID *string
	CityID       *string
}

// CreateNode validates the kind/parent combination, checks sibling-name and
// code uniqueness, and persists the node. Root-level creation is only allowed
// for sectors; a subsector requires an existing active sector parent.
func CreateNode(db *gorm.DB, input CreateNodeInput) (*models.HierarchyNode, error) {
	if input.OwnerID == "" {
		return nil, ErrUnauthorized
	}
	if !models.IsValidNodeKind(input.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidHierarchy, input.Kind)
	}

	if err := validateHierarchy(db, input.Kind, input.ParentID); err != nil {
		return nil, err
	}

	// Pre-fill sector display name from its city
	if input.Kind == models.NodeKindSector && input.Name == "" && input.CityID != nil {
		var city models.City
		if err := db.First(&city, "id = ?", *input.CityID).Error; err == nil {
			input.Name = "Sector " + city.Name
		}
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	exists, err := siblingNameExists(db, input.Kind, input.ParentID, input.Name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	code := input.Code
	if code == "" {
		code, err = generateNodeCode(db, input.Name)
		if err != nil {
			return nil, err
		}
	} else {
		var count int64
		if err := db.Model(&models.HierarchyNode{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: code %q is taken", ErrDuplicateName, code)
		}
	}

	node := &models.HierarchyNode{
		Kind:        input.Kind,
		ParentID:    input.ParentID,
		Name:        input.Name,
		Code:        code,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	if input.Kind == models.NodeKindSector {
		node.CountryID = input.CountryID
		node.DepartmentID = input.DepartmentID
		node.CityID = input.CityID
	}

	if err := db.Create(node).Error; err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	node.Children = []models.HierarchyNode{}
	return node, nil
}

// validateHierarchy enforces the only valid parent/child kind combination:
// sector at the root, subsector under a sector.
func validateHierarchy(db *gorm.DB, kind string, parentID *string) error {
	switch kind {
	case models.NodeKindSector:
		if parentID != nil && *parentID != "" {
			return fmt.Errorf("%w: a sector cannot have a parent", ErrInvalidHierarchy)
		}
	case models.NodeKindSubsector:
		if parentID == nil || *parentID == "" {
			return fmt.Errorf("%w: a subsector requires a parent sector", ErrInvalidHierarchy)
		}
		var parent models.HierarchyNode
		if err := db.First(&parent, "id = ?", *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: parent sector does not exist", ErrInvalidHierarchy)
			}
			return fmt.Errorf("failed to resolve parent: %w", err)
		}
		if !parent.IsSector() {
			return fmt.Errorf("%w: parent of a subsector must be a sector", ErrInvalidHierarchy)
		}
		if !parent.IsActive {
			return fmt.Errorf("%w: parent sector is inactive", ErrInvalidHierarchy)
		}
	}
	return nil
}

// siblingNameExists reports whether an active node of the same kind and parent
// already carries this name. excludeID skips the node being updated.
func siblingNameExists(db *gorm.DB, kind string, parentID *string, name, excludeID string) (bool, error) {
	query := db.Model(&models.HierarchyNode{}).
		Where("kind = ? AND name = ? AND is_active = ?", kind, name, true)

	if parentID == nil || *parentID == "" {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sibling names: %w", err)
	}
	return count > 0, nil
}

// generateNodeCode derives a unique short code from the node name
func generateNodeCode(db *gorm.DB, name string) (string, error) {
	code := strings.ToUpper(name)
	code = regexp.MustCompile(`[^A-Z0-9]+`).ReplaceAllString(code, "-")
	code = strings.Trim(code, "-")
	if len(code) > 20 {
		code = strings.TrimRight(code[:20], "-")
	}
	if code == "" {
		code = "NODE"
	}

	original := code
	counter := 1
	for {
		var count int64
		if err := db.Model(&models.HierarchyNode{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if count == 0 {
			return code, nil
		}
		code = original + "-" + strconv.Itoa(counter)
		counter++
	}
}

// GetNode fetches a single node by id
func GetNode(db *gorm.DB, id string) (*models.HierarchyNode, error) {
	var node models.HierarchyNode
	if err := db.First(&node, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch node: %w", err)
	}
	return &node, nil
}

// TreeOptions controls tree assembly
type TreeOptions struct {
	RootID          string // when set, only this sector (and its subtree) is returned
	IncludeInactive bool
}

// SubsectorTree is a subsector with its attached case-record leaves
type SubsectorTree struct {
	models.HierarchyNode
	Persons  []models.PersonRecord  `json:"persons"`
	Vehicles []models.VehicleRecord `json:"vehicles"`
}

// SectorTree is a sector with its nested subsectors
type SectorTree struct {
	models.HierarchyNode
	Subsectors []SubsectorTree `json:"subsectors"`
}

// GetTree assembles the nested sector > subsector > {person, vehicle} view as
// an iterative breadth-first traversal over exactly two node levels plus the
// record leaves. Each level is ordered by sort_order, then name; inactive rows
// are filtered out before descending unless IncludeInactive is set.
func GetTree(db *gorm.DB, opts TreeOptions) ([]SectorTree, error) {
	level := func(q *gorm.DB) *gorm.DB {
		if !opts.IncludeInactive {
			q = q.Where("is_active = ?", true)
		}
		return q
	}

	// Level 0: sectors
	sectorQuery := level(db.Where("kind = ?", models.NodeKindSector))
	if opts.RootID != "" {
		sectorQuery = sectorQuery.Where("id = ?", opts.RootID)
	}
	var sectors []models.HierarchyNode
	if err := sectorQuery.Order("sort_order ASC, name ASC").Find(&sectors).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sectors: %w", err)
	}
	if opts.RootID != "" && len(sectors) == 0 {
		return nil, ErrNotFound
	}
	if len(sectors) == 0 {
		return []SectorTree{}, nil
	}

	sectorIDs := make([]string, 0, len(sectors))
	for _, s := range sectors {
		sectorIDs = append(sectorIDs, s.ID)
	}

	// Level 1: subsectors under the collected sectors
	var subsectors []models.HierarchyNode
	if err := level(db.Where("kind = ? AND parent_id IN ?", models.NodeKindSubsector, sectorIDs)).
		Order("sort_order ASC, name ASC").Find(&subsectors).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subsectors: %w", err)
	}

	subsectorIDs := make([]string, 0, len(subsectors))
	for _, s := range subsectors {
		subsectorIDs = append(subsectorIDs, s.ID)
	}

	// Leaf level: case records attached to the collected subsectors
	persons := map[string][]models.PersonRecord{}
	vehicles := map[string][]models.VehicleRecord{}
	if len(subsectorIDs) > 0 {
		var personRows []models.PersonRecord
		if err := level(db.Where("subsector_id IN ?", subsectorIDs)).
			Order("full_name ASC").Find(&personRows).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch person records: %w", err)
		}
		for _, p := range personRows {
			persons[p.SubsectorID] = append(persons[p.SubsectorID], p)
		}

		var vehicleRows []models.VehicleRecord
		if err := level(db.Where("subsector_id IN ?", subsectorIDs)).
			Order("plate ASC").Find(&vehicleRows).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch vehicle records: %w", err)
		}
		for _, v := range vehicleRows {
			vehicles[v.SubsectorID] = append(vehicles[v.SubsectorID], v)
		}
	}

	// Assemble bottom-up
	bySector := map[string][]SubsectorTree{}
	for _, sub := range subsectors {
		branch := SubsectorTree{
			HierarchyNode: sub,
			Persons:       persons[sub.ID],
			Vehicles:      vehicles[sub.ID],
		}
		if branch.Persons == nil {
			branch.Persons = []models.PersonRecord{}
		}
		if branch.Vehicles == nil {
			branch.Vehicles = []models.VehicleRecord{}
		}
		bySector[*sub.ParentID] = append(bySector[*sub.ParentID], branch)
	}

	tree := make([]SectorTree, 0, len(sectors))
	for _, sector := range sectors {
		branches := bySector[sector.ID]
		if branches == nil {
			branches = []SubsectorTree{}
		}
		tree = append(tree, SectorTree{HierarchyNode: sector, Subsectors: branches})
	}
	return tree, nil
}

// UpdateNodeInput is a partial patch; nil fields are left untouched. Kind and
// parent are immutable: re-parenting is not supported.
type UpdateNodeInput struct {
	Name        *string
	Description *string
	SortOrder   *int
	IsActive    *bool

	CountryID    *string
	DepartmentID *string
	CityID       *string
}

// UpdateNode applies a patch to a node. A name change is rejected when it
// collides with an active sibling at the same level.
func UpdateNode(db *gorm.DB, id string, patch UpdateNodeInput) (*models.HierarchyNode, error) {
	node, err := GetNode(db, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name != node.Name {
		exists, err := siblingNameExists(db, node.Kind, node.ParentID, *patch.Name, node.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateName
		}
		node.Name = *patch.Name
	}
	if patch.Description != nil {
		node.Description = *patch.Description
	}
	if patch.SortOrder != nil {
		node.SortOrder = *patch.SortOrder
	}
	if patch.IsActive != nil {
		node.IsActive = *patch.IsActive
	}
	if node.IsSector() {
		if patch.CountryID != nil {
			node.CountryID = patch.CountryID
		}
		if patch.DepartmentID != nil {
			node.DepartmentID = patch.DepartmentID
		}
		if patch.CityID != nil {
			node.CityID = patch.CityID
		}
	}

	if err := db.Save(node).Error; err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}
	return node, nil
}

// SoftDeleteNode marks the node inactive. Children keep their own active flag;
// they simply stop being reachable through the active-filtered tree.
func SoftDeleteNode(db *gorm.DB, id string) error {
	node, err := GetNode(db, id)
	if err != nil {
		return err
	}

	if err := db.Model(node).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to soft-delete node: %w", err)
	}
	return nil
}

// SoftDeleteSector soft-deletes a sector. It refuses while any active
// subsector remains under it, and hard-deletes already-inactive descendants in
// the same transaction so a retired sector never shelters orphaned rows.
func SoftDeleteSector(db *gorm.DB, id string) (*CascadeResult, error) {
	node, err := GetNode(db, id)
	if err != nil {
		return nil, err
	}
	if !node.IsSector() {
		return nil, fmt.Errorf("%w: node %s is not a sector", ErrInvalidHierarchy, id)
	}

	var activeChildren int64
	if err := db.Model(&models.HierarchyNode{}).
		Where("parent_id = ? AND is_active = ?", id, true).
		Count(&activeChildren).Error; err != nil {
		return nil, fmt.Errorf("failed to count active children: %w", err)
	}
	if activeChildren > 0 {
		return nil, ErrHasActiveChildren
	}

	result := &CascadeResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		var inactive []models.HierarchyNode
		if err := tx.Where("parent_id = ? AND is_active = ?", id, false).Find(&inactive).Error; err != nil {
			return fmt.Errorf("failed to collect inactive children: %w", err)
		}
		for _, child := range inactive {
			r, err := cascadeDelete(tx, &child)
			if err != nil {
				return err
			}
			result.add(r)
		}
		if err := tx.Model(&models.HierarchyNode{}).Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to soft-delete sector: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CascadeResult reports what a cascade removed, for auditability
type CascadeResult struct {
	Nodes    int64 `json:"nodes"`
	Persons  int64 `json:"persons"`
	Vehicles int64 `json:"vehicles"`
}

func (r *CascadeResult) add(other *CascadeResult) {
	r.Nodes += other.Nodes
	r.Persons += other.Persons
	r.Vehicles += other.Vehicles
}

// HardDeleteNode permanently removes a node together with its whole subtree:
// descendant nodes children-before-parent, then every case record attached to
// a subsector in the subtree, then the node itself. The closure of descendant
// ids is collected up front and the deletions run inside one transaction, so a
// failure mid-cascade leaves no orphaned grandchildren.
func HardDeleteNode(db *gorm.DB, id string) (*CascadeResult, error) {
	node, err := GetNode(db, id)
	if err != nil {
		return nil, err
	}

	var result *CascadeResult
	err = db.Transaction(func(tx *gorm.DB) error {
		r, err := cascadeDelete(tx, node)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Cascade delete of node %s (%s) removed %d nodes, %d person records, %d vehicle records",
		node.Code, node.Kind, result.Nodes, result.Persons, result.Vehicles)
	return result, nil
}

// cascadeDelete runs inside a transaction. It walks the subtree breadth-first
// to collect the closure of descendant ids, then deletes leaves first.
func cascadeDelete(tx *gorm.DB, node *models.HierarchyNode) (*CascadeResult, error) {
	// Collect the closure: frontier starts at the node, descends level by
	// level. The tree is depth-capped at 2 but the walk is generic.
	closure := []string{node.ID}
	subsectorIDs := []string{}
	if node.IsSubsector() {
		subsectorIDs = append(subsectorIDs, node.ID)
	}

	frontier := []string{node.ID}
	for len(frontier) > 0 {
		var children []models.HierarchyNode
		if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, fmt.Errorf("failed to collect descendants: %w", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			closure = append(closure, child.ID)
			frontier = append(frontier, child.ID)
			if child.IsSubsector() {
				subsectorIDs = append(subsectorIDs, child.ID)
			}
		}
	}

	result := &CascadeResult{}

	// Leaves first: case records attached to any subsector in the subtree
	if len(subsectorIDs) > 0 {
		persons := tx.Unscoped().Where("subsector_id IN ?", subsectorIDs).Delete(&models.PersonRecord{})
		if persons.Error != nil {
			return nil, fmt.Errorf("failed to delete person records: %w", persons.Error)
		}
		result.Persons = persons.RowsAffected

		vehicles := tx.Unscoped().Where("subsector_id IN ?", subsectorIDs).Delete(&models.VehicleRecord{})
		if vehicles.Error != nil {
			return nil, fmt.Errorf("failed to delete vehicle records: %w", vehicles.Error)
		}
		result.Vehicles = vehicles.RowsAffected
	}

	// Then the nodes, children before parent
	for i := len(closure) - 1; i >= 0; i-- {
		nodes := tx.Unscoped().Where("id = ?", closure[i]).Delete(&models.HierarchyNode{})
		if nodes.Error != nil {
			return nil, fmt.Errorf("failed to delete node %s: %w", closure[i], nodes.Error)
		}
		result.Nodes += nodes.RowsAffected
	}

	return result, nil
}
