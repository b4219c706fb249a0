package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"crime_records_go/models"

	"gorm.io/gorm"
)

// The legacy system kept the hierarchy in a document store keyed by object
// ids. Its export (mongoexport-style: one JSON object per line) is replayed
// here into the relational schema. Foreign keys are remapped through in-memory
// old-id -> new-id tables populated stage by stage in strict topological
// order: users, then sectors, then subsectors, then case records. A lookup
// miss skips that single document; the run is best-effort, never all-or-nothing.

// legacyID accepts both a plain string id and the extended {"$oid": "..."} form
type legacyID string

func (l *legacyID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = legacyID(s)
		return nil
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &oid); err != nil {
		return fmt.Errorf("unsupported legacy id format: %s", string(data))
	}
	*l = legacyID(oid.OID)
	return nil
}

// LegacyUser mirrors a user document from the export
type LegacyUser struct {
	ID       legacyID `json:"_id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"` // already hashed in the source system
	Role     string   `json:"role"`
	State    *bool    `json:"state"`
}

// LegacyNode mirrors a sector or subsector document from the export
type LegacyNode struct {
	ID     legacyID `json:"_id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"` // "sector" or "subsector"
	Parent legacyID `json:"parent"`
	User   legacyID `json:"user"`
	State  *bool    `json:"state"`
	Order  int      `json:"order"`
}

// LegacyPerson mirrors a person-of-interest document from the export
type LegacyPerson struct {
	ID           legacyID       `json:"_id"`
	Name         string         `json:"name"`
	Alias        string         `json:"alias"`
	DocumentType string         `json:"documentType"`
	Document     string         `json:"document"`
	Subsector    legacyID       `json:"subsector"`
	User         legacyID       `json:"user"`
	State        *bool          `json:"state"`
	Details      models.JSONMap `json:"details"`
}

// LegacyVehicle mirrors a vehicle document from the export
type LegacyVehicle struct {
	ID        legacyID       `json:"_id"`
	Plate     string         `json:"plate"`
	Chassis   string         `json:"chassis"`
	Brand     string         `json:"brand"`
	Model     string         `json:"model"`
	Color     string         `json:"color"`
	Subsector legacyID       `json:"subsector"`
	User      legacyID       `json:"user"`
	State     *bool          `json:"state"`
	Details   models.JSONMap `json:"details"`
}

// LegacySource bundles the export streams, one per collection
type LegacySource struct {
	Users      io.Reader
	Sectors    io.Reader
	Subsectors io.Reader
	Persons    io.Reader
	Vehicles   io.Reader
}

// OpenLegacyExport opens the conventional export file names inside dir.
// Missing files are tolerated (that stage just processes nothing).
func OpenLegacyExport(dir string) (*LegacySource, func(), error) {
	var files []*os.File
	open := func(name string) io.Reader {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			log.Printf("[MIGRATE] Export file %s not found, skipping stage", name)
			return nil
		}
		files = append(files, f)
		return f
	}

	src := &LegacySource{
		Users:      open("users.json"),
		Sectors:    open("sectors.json"),
		Subsectors: open("subsectors.json"),
		Persons:    open("persons.json"),
		Vehicles:   open("vehicles.json"),
	}
	closer := func() {
		for _, f := range files {
			f.Close()
		}
	}
	if len(files) == 0 {
		closer()
		return nil, nil, fmt.Errorf("no export files found in %s", dir)
	}
	return src, closer, nil
}

// StageReport counts the outcomes of one migration stage
type StageReport struct {
	Migrated int `json:"migrated"`
	Existing int `json:"existing"` // matched by natural key, left untouched
	Skipped  int `json:"skipped"`  // unreadable document or unresolvable foreign key
}

// MigrationReport aggregates the per-stage outcomes of one run
type MigrationReport struct {
	Users      StageReport `json:"users"`
	Sectors    StageReport `json:"sectors"`
	Subsectors StageReport `json:"subsectors"`
	Persons    StageReport `json:"persons"`
	Vehicles   StageReport `json:"vehicles"`
}

// MigrationMapper is the one-shot batch transform from the document-store
// export to relational rows. Not resumable: a fresh mapper is built per run,
// but re-running against an already-migrated target does not duplicate rows
// because each stage detects existing rows by natural key.
type MigrationMapper struct {
	db        *gorm.DB
	userIDMap map[string]string
	nodeIDMap map[string]string
	report    MigrationReport
}

// NewMigrationMapper creates a mapper writing into db
func NewMigrationMapper(db *gorm.DB) *MigrationMapper {
	return &MigrationMapper{
		db:        db,
		userIDMap: make(map[string]string),
		nodeIDMap: make(map[string]string),
	}
}

// decodeEach reads one JSON document per line from r, passing each raw
// message to fn. Decode errors skip the document, not the run.
func decodeEach(r io.Reader, stage string, report *StageReport, fn func(json.RawMessage)) {
	if r == nil {
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			log.Printf("[MIGRATE] %s: unreadable document, skipping", stage)
			report.Skipped++
			continue
		}
		fn(json.RawMessage(line))
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[MIGRATE] %s: read error, stage truncated: %v", stage, err)
	}
}

// Run executes the full migration in topological order and returns the report
func (m *MigrationMapper) Run(src *LegacySource) (*MigrationReport, error) {
	if src == nil {
		return nil, fmt.Errorf("no legacy source provided")
	}

	m.migrateUsers(src.Users)
	m.migrateNodes(src.Sectors, models.NodeKindSector, &m.report.Sectors)
	m.migrateNodes(src.Subsectors, models.NodeKindSubsector, &m.report.Subsectors)
	m.migratePersons(src.Persons)
	m.migrateVehicles(src.Vehicles)

	log.Printf("[MIGRATE] Done. users=%+v sectors=%+v subsectors=%+v persons=%+v vehicles=%+v",
		m.report.Users, m.report.Sectors, m.report.Subsectors, m.report.Persons, m.report.Vehicles)
	return &m.report, nil
}

// mapLegacyRole normalizes the legacy role labels (ADMIN_ROLE, USER_ROLE, ...)
func mapLegacyRole(role string) string {
	switch {
	case strings.Contains(strings.ToUpper(role), "ADMIN"):
		return models.RoleAdmin
	case strings.Contains(strings.ToUpper(role), "USER"), strings.Contains(strings.ToUpper(role), "EDITOR"):
		return models.RoleEditor
	default:
		return models.RoleViewer
	}
}

func (m *MigrationMapper) migrateUsers(r io.Reader) {
	report := &m.report.Users
	decodeEach(r, "users", report, func(raw json.RawMessage) {
		var doc LegacyUser
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Email == "" {
			log.Printf("[MIGRATE] users: skipping malformed document: %v", err)
			report.Skipped++
			return
		}

		// Natural key: email
		var existing models.User
		err := m.db.Where("email = ?", doc.Email).First(&existing).Error
		if err == nil {
			m.userIDMap[string(doc.ID)] = existing.ID
			report.Existing++
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[MIGRATE] users: lookup failed for %s: %v", doc.Email, err)
			report.Skipped++
			return
		}

		user := &models.User{
			Name:     doc.Name,
			Email:    doc.Email,
			Password: doc.Password,
			Role:     mapLegacyRole(doc.Role),
			IsActive: doc.State == nil || *doc.State,
		}
		if err := m.db.Create(user).Error; err != nil {
			log.Printf("[MIGRATE] users: failed to create %s: %v", doc.Email, err)
			report.Skipped++
			return
		}
		m.userIDMap[string(doc.ID)] = user.ID
		report.Migrated++
	})
}

func (m *MigrationMapper) migrateNodes(r io.Reader, kind string, report *StageReport) {
	decodeEach(r, kind+"s", report, func(raw json.RawMessage) {
		var doc LegacyNode
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Name == "" {
			log.Printf("[MIGRATE] %ss: skipping malformed document: %v", kind, err)
			report.Skipped++
			return
		}

		var parentID *string
		if kind == models.NodeKindSubsector {
			mapped, ok := m.nodeIDMap[string(doc.Parent)]
			if !ok {
				log.Printf("[MIGRATE] subsectors: parent %s of %q not migrated, skipping", doc.Parent, doc.Name)
				report.Skipped++
				return
			}
			parentID = &mapped
		}

		ownerID, ok := m.userIDMap[string(doc.User)]
		if !ok {
			log.Printf("[MIGRATE] %ss: owner %s of %q not migrated, skipping", kind, doc.User, doc.Name)
			report.Skipped++
			return
		}

		// Natural key: name + parent + kind
		query := m.db.Where("kind = ? AND name = ?", kind, doc.Name)
		if parentID == nil {
			query = query.Where("parent_id IS NULL")
		} else {
			query = query.Where("parent_id = ?", *parentID)
		}
		var existing models.HierarchyNode
		err := query.First(&existing).Error
		if err == nil {
			m.nodeIDMap[string(doc.ID)] = existing.ID
			report.Existing++
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[MIGRATE] %ss: lookup failed for %q: %v", kind, doc.Name, err)
			report.Skipped++
			return
		}

		node, err := CreateNode(m.db, CreateNodeInput{
			Kind:      kind,
			Name:      doc.Name,
			ParentID:  parentID,
			SortOrder: doc.Order,
			OwnerID:   ownerID,
		})
		if err != nil {
			log.Printf("[MIGRATE] %ss: failed to create %q: %v", kind, doc.Name, err)
			report.Skipped++
			return
		}
		if doc.State != nil && !*doc.State {
			m.db.Model(node).Update("is_active", false)
		}
		m.nodeIDMap[string(doc.ID)] = node.ID
		report.Migrated++
	})
}

func (m *MigrationMapper) migratePersons(r io.Reader) {
	report := &m.report.Persons
	decodeEach(r, "persons", report, func(raw json.RawMessage) {
		var doc LegacyPerson
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Document == "" {
			log.Printf("[MIGRATE] persons: skipping malformed document: %v", err)
			report.Skipped++
			return
		}

		subsectorID, ok := m.nodeIDMap[string(doc.Subsector)]
		if !ok {
			log.Printf("[MIGRATE] persons: subsector %s of %q not migrated, skipping", doc.Subsector, doc.Name)
			report.Skipped++
			return
		}
		ownerID, ok := m.userIDMap[string(doc.User)]
		if !ok {
			log.Printf("[MIGRATE] persons: owner %s of %q not migrated, skipping", doc.User, doc.Name)
			report.Skipped++
			return
		}

		// Natural key: identity document number
		var count int64
		if err := m.db.Model(&models.PersonRecord{}).
			Where("document_number = ?", doc.Document).Count(&count).Error; err != nil {
			log.Printf("[MIGRATE] persons: lookup failed for %q: %v", doc.Name, err)
			report.Skipped++
			return
		}
		if count > 0 {
			report.Existing++
			return
		}

		docType := doc.DocumentType
		if !models.IsValidDocumentType(docType) {
			docType = models.DocTypeCC
		}
		record := &models.PersonRecord{
			SubsectorID:    subsectorID,
			FullName:       doc.Name,
			Alias:          doc.Alias,
			DocumentType:   docType,
			DocumentNumber: doc.Document,
			Details:        doc.Details,
			OwnerID:        ownerID,
			IsActive:       doc.State == nil || *doc.State,
		}
		if err := m.db.Create(record).Error; err != nil {
			log.Printf("[MIGRATE] persons: failed to create %q: %v", doc.Name, err)
			report.Skipped++
			return
		}
		report.Migrated++
	})
}

func (m *MigrationMapper) migrateVehicles(r io.Reader) {
	report := &m.report.Vehicles
	decodeEach(r, "vehicles", report, func(raw json.RawMessage) {
		var doc LegacyVehicle
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Plate == "" {
			log.Printf("[MIGRATE] vehicles: skipping malformed document: %v", err)
			report.Skipped++
			return
		}

		subsectorID, ok := m.nodeIDMap[string(doc.Subsector)]
		if !ok {
			log.Printf("[MIGRATE] vehicles: subsector %s of %q not migrated, skipping", doc.Subsector, doc.Plate)
			report.Skipped++
			return
		}
		ownerID, ok := m.userIDMap[string(doc.User)]
		if !ok {
			log.Printf("[MIGRATE] vehicles: owner %s of %q not migrated, skipping", doc.User, doc.Plate)
			report.Skipped++
			return
		}

		// Natural key: plate
		plate := normalizePlate(doc.Plate)
		var count int64
		if err := m.db.Model(&models.VehicleRecord{}).
			Where("plate = ?", plate).Count(&count).Error; err != nil {
			log.Printf("[MIGRATE] vehicles: lookup failed for %q: %v", doc.Plate, err)
			report.Skipped++
			return
		}
		if count > 0 {
			report.Existing++
			return
		}

		record := &models.VehicleRecord{
			SubsectorID:   subsectorID,
			Plate:         plate,
			ChassisNumber: strings.ToUpper(strings.TrimSpace(doc.Chassis)),
			Make:          doc.Brand,
			Model:         doc.Model,
			Color:         doc.Color,
			Details:       doc.Details,
			OwnerID:       ownerID,
			IsActive:      doc.State == nil || *doc.State,
		}
		if err := m.db.Create(record).Error; err != nil {
			log.Printf("[MIGRATE] vehicles: failed to create %q: %v", doc.Plate, err)
			report.Skipped++
			return
		}
		report.Migrated++
	})
}
