package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chemsnap/backend/config"
	"chemsnap/backend/models"
	"chemsnap/backend/policy"
	"chemsnap/backend/utils"
)

const (
	localUser     = "currentUser"
	localIdentity = "currentIdentity"
)

// RequireAuth admits a request: token parse, profile load, token version and
// block checks — in that order, all fail-closed. On success the loaded user
// and the policy identity are stored in locals for the handlers.
func RequireAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, tokenVer, err := utils.ExtractTokenClaims(c, cfg)
		if err != nil {
			return utils.Denied(c, fiber.StatusUnauthorized, "Unauthorized", "/login", false)
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			// Profile load failure, including not-found, means the session
			// cannot be trusted: force sign-out rather than fail open.
			return utils.Denied(c, fiber.StatusUnauthorized, "Session could not be verified", "/login", true)
		}

		if user.TokenVersion != tokenVer {
			return utils.Denied(c, fiber.StatusUnauthorized, "Session expired", "/login", true)
		}

		if user.IsBlocked {
			return utils.Denied(c, fiber.StatusUnauthorized, "Account is blocked", "/login", true)
		}

		c.Locals(localUser, &user)
		c.Locals(localIdentity, &policy.Identity{
			ID:        user.ID,
			Role:      policy.Role(user.Role),
			IsBlocked: user.IsBlocked,
		})
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func CurrentIdentity(c *fiber.Ctx) *policy.Identity {
	identity, _ := c.Locals(localIdentity).(*policy.Identity)
	return identity
}
