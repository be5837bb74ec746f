package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"chemsnap/backend/config"
	"chemsnap/backend/models"
)

// GenerateJWTToken mints a session token. The user's current TokenVersion is
// baked into the claims; blocking a user bumps the version and orphans every
// token minted before the block.
func GenerateJWTToken(user *models.User, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"token_ver": user.TokenVersion,
		"exp":       time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractTokenClaims validates the Authorization token and returns the user id
// and token version it carries.
func ExtractTokenClaims(c *fiber.Ctx, cfg *config.Config) (uint, uint, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	tokenVerFloat, _ := claims["token_ver"].(float64)

	return uint(userIDFloat), uint(tokenVerFloat), nil
}
