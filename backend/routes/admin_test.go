package routes_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"chemsnap/backend/models"
)

func TestListUsersIsAdminOnly(t *testing.T) {
	student := seedUser(t, uniqueName("curious"), "student")
	admin := seedUser(t, uniqueName("admin"), "admin")

	resp := request(t, "GET", "/api/admin/users", login(t, student.Username), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "GET", "/api/admin/users", login(t, admin.Username), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.GreaterOrEqual(t, body["total"].(float64), float64(2))
}

func TestChangeRole(t *testing.T) {
	admin := seedUser(t, uniqueName("admin"), "admin")
	target := seedUser(t, uniqueName("promote"), "student")
	token := login(t, admin.Username)

	resp := request(t, "PUT", urlf("/api/admin/users/%d/role", target.ID), token, map[string]string{
		"role": "teacher",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.User
	db.First(&updated, target.ID)
	assert.Equal(t, "teacher", updated.Role)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	admin := seedUser(t, uniqueName("admin"), "admin")
	target := seedUser(t, uniqueName("target"), "student")

	resp := request(t, "PUT", urlf("/api/admin/users/%d/role", target.ID), login(t, admin.Username), map[string]string{
		"role": "superuser",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminCannotTargetSelf(t *testing.T) {
	admin := seedUser(t, uniqueName("selfadmin"), "admin")
	token := login(t, admin.Username)

	// Role change, block and delete on the admin's own account are all
	// rejected, and the account must be untouched afterwards.
	resp := request(t, "PUT", urlf("/api/admin/users/%d/role", admin.ID), token, map[string]string{
		"role": "student",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "PUT", urlf("/api/admin/users/%d/block", admin.ID), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "DELETE", urlf("/api/admin/users/%d", admin.ID), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var fresh models.User
	assert.NoError(t, db.First(&fresh, admin.ID).Error)
	assert.Equal(t, "admin", fresh.Role)
	assert.False(t, fresh.IsBlocked)
}

func TestBlockAndUnblock(t *testing.T) {
	admin := seedUser(t, uniqueName("admin"), "admin")
	target := seedUser(t, uniqueName("naughty"), "student")
	token := login(t, admin.Username)

	resp := request(t, "PUT", urlf("/api/admin/users/%d/block", target.ID), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var blocked models.User
	db.First(&blocked, target.ID)
	assert.True(t, blocked.IsBlocked)
	assert.Greater(t, blocked.TokenVersion, target.TokenVersion)

	resp = request(t, "PUT", urlf("/api/admin/users/%d/unblock", target.ID), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var unblocked models.User
	db.First(&unblocked, target.ID)
	assert.False(t, unblocked.IsBlocked)
}

func TestDeleteUser(t *testing.T) {
	admin := seedUser(t, uniqueName("admin"), "admin")
	target := seedUser(t, uniqueName("leaving"), "personal")

	resp := request(t, "DELETE", urlf("/api/admin/users/%d", target.ID), login(t, admin.Username), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var gone models.User
	assert.Error(t, db.First(&gone, target.ID).Error)
}
