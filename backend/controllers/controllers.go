package controllers

import (
	"github.com/gofiber/fiber/v2"

	"chemsnap/backend/policy"
	"chemsnap/backend/utils"
)

// denied renders a policy denial. A dead session (forced sign-out) is a 401 so
// the client drops its token; a role/ownership refusal is a 403.
func denied(c *fiber.Ctx, d policy.Decision) error {
	status := fiber.StatusForbidden
	if d.ForceSignOut {
		status = fiber.StatusUnauthorized
	}
	return utils.Denied(c, status, d.Reason, d.Redirect, d.ForceSignOut)
}
