package services

import (
	"testing"

	"crime_records_go/models"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	viewer := RoleCapabilities(models.RoleViewer)
	assert.True(t, viewer.Read)
	assert.False(t, viewer.Write)
	assert.False(t, viewer.Admin)

	editor := RoleCapabilities(models.RoleEditor)
	assert.True(t, editor.Read)
	assert.True(t, editor.Write)
	assert.False(t, editor.Admin)

	admin := RoleCapabilities(models.RoleAdmin)
	assert.True(t, admin.Read)
	assert.True(t, admin.Write)
	assert.True(t, admin.Admin)

	unknown := RoleCapabilities("intern")
	assert.False(t, unknown.Read)
	assert.False(t, unknown.Write)
	assert.False(t, unknown.Admin)
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(models.RoleAdmin, models.RoleViewer))
	assert.True(t, RoleAtLeast(models.RoleEditor, models.RoleEditor))
	assert.False(t, RoleAtLeast(models.RoleViewer, models.RoleEditor))
	assert.False(t, RoleAtLeast("", models.RoleViewer))
}

func TestCanModifyIsRoleScoped(t *testing.T) {
	// Write access comes from the role alone; ownership never gates it
	assert.True(t, CanModify(models.RoleEditor, "someone-else", "me"))
	assert.True(t, CanModify(models.RoleAdmin, "someone-else", "me"))

	// Not even on their own rows
	assert.False(t, CanModify(models.RoleViewer, "me", "me"))
}

func TestCanHardDelete(t *testing.T) {
	assert.True(t, CanHardDelete(models.RoleAdmin))
	assert.False(t, CanHardDelete(models.RoleEditor))
	assert.False(t, CanHardDelete(models.RoleViewer))
}
