package services

import (
	"log"

	"crime_records_go/models"

	"gorm.io/gorm"
)

// AuditContext carries the actor and request metadata for an audit entry
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// RecordAudit writes an immutable audit entry. Audit failures are logged and
// swallowed; they never fail the operation being audited.
func RecordAudit(db *gorm.DB, ctx AuditContext, action models.AuditAction, resourceType, resourceID, resourceName, description string) {
	entry := &models.AuditLog{
		UserName:     ctx.UserName,
		UserRole:     ctx.UserRole,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Action:       action,
		Description:  description,
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
	}
	if ctx.UserID != "" {
		entry.UserID = &ctx.UserID
	}

	if err := db.Create(entry).Error; err != nil {
		log.Printf("[WARNING] Failed to write audit log for %s %s: %v", action, resourceID, err)
	}
}

// ListAuditLogs returns the most recent audit entries, newest first
func ListAuditLogs(db *gorm.DB, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.AuditLog
	if err := db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
