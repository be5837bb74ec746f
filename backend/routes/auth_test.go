package routes_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLogin(t *testing.T) {
	username := uniqueName("reg")

	resp := request(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := dataOf(t, resp)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "student", data["user"].(map[string]interface{})["role"])

	token := login(t, username)
	assert.NotEmpty(t, token)
}

func TestRegisterCannotSelfAssignAdmin(t *testing.T) {
	username := uniqueName("wannabe")

	resp := request(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
		"role":     "admin",
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRegisterValidatesInput(t *testing.T) {
	resp := request(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "ab", // too short
		"email":    "not-an-email",
		"password": "short",
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	user := seedUser(t, uniqueName("badpw"), "student")

	resp := request(t, "POST", "/api/auth/login", "", map[string]string{
		"username": user.Username,
		"password": "not-the-password",
	})

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileRequiresToken(t *testing.T) {
	resp := request(t, "GET", "/api/user/profile", "", nil)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetProfile(t *testing.T) {
	user := seedUser(t, uniqueName("profile"), "teacher")
	token := login(t, user.Username)

	resp := request(t, "GET", "/api/user/profile", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := dataOf(t, resp)
	assert.Equal(t, user.Username, data["username"])
	assert.Equal(t, "teacher", data["role"])
	assert.Contains(t, data["nav"], "classes")
}

func TestBlockedUserCannotLogin(t *testing.T) {
	user := seedUser(t, uniqueName("blocked"), "student")
	db.Model(&user).Update("is_blocked", true)

	resp := request(t, "POST", "/api/auth/login", "", map[string]string{
		"username": user.Username,
		"password": testPassword,
	})

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["sign_out"])
}

func TestBlockingKillsLiveSessions(t *testing.T) {
	admin := seedUser(t, uniqueName("admin"), "admin")
	victim := seedUser(t, uniqueName("victim"), "student")

	victimToken := login(t, victim.Username)
	adminToken := login(t, admin.Username)

	// Session works before the block.
	resp := request(t, "GET", "/api/user/profile", victimToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "PUT", urlf("/api/admin/users/%d/block", victim.ID), adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The previously issued token is now dead, with a sign-out signal.
	resp = request(t, "GET", "/api/user/profile", victimToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["sign_out"])
}

func TestUpdateProfile(t *testing.T) {
	user := seedUser(t, uniqueName("editme"), "student")
	token := login(t, user.Username)

	resp := request(t, "PUT", "/api/user/profile", token, map[string]string{
		"display_name": "Edited Name",
		"school":       "Sydney Grammar",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "GET", "/api/user/profile", token, nil)
	data := dataOf(t, resp)
	assert.Equal(t, "Edited Name", data["display_name"])
	assert.Equal(t, "Sydney Grammar", data["school"])
}

func TestNotificationPrefs(t *testing.T) {
	user := seedUser(t, uniqueName("prefs"), "student")
	token := login(t, user.Username)

	resp := request(t, "PUT", "/api/user/notifications", token, map[string]bool{
		"streak_reminders": true,
		"email_on_grade":   false,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "GET", "/api/user/notifications", token, nil)
	data := dataOf(t, resp)
	assert.Equal(t, true, data["streak_reminders"])
	assert.Equal(t, false, data["email_on_grade"])
	assert.Equal(t, true, data["email_on_comment"])
}
